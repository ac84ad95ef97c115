// Package config handles the per-machine configuration of drifters.
// It layers built-in defaults, the machine's config.toml and DRIFTERS_*
// environment variables, in that order.
package config
