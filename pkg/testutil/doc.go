// Package testutil provides fixtures shared by drifters tests: an isolated
// on-disk environment and an in-process Store that mirrors directories
// instead of talking to git.
package testutil
