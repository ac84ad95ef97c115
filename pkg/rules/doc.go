// Package rules holds the declarative sync rules and the machine registry
// that live inside the shared store.
//
// # Sync rules
//
// .drifters/sync-rules.toml maps app names to their pattern lists. Patterns
// accumulate across three tiers: app-wide, per OS and per machine.
//
//	[apps.zsh]
//	include = ["~/.zshrc", "~/.config/zsh/**/*.zsh"]
//	exclude = ["history"]
//	include_macos = ["~/.zprofile"]
//
//	[apps.zsh.machines.work-laptop]
//	exclude = ["**/secrets.zsh"]
//
// # Machine registry
//
// .drifters/machines.toml records every machine that joined the store, its
// OS and the time of its last push.
//
// Both files can be exported to and imported from TOML or YAML files, chosen
// by extension.
package rules
