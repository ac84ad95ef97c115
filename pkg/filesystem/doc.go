// Package filesystem provides the afero filesystems drifters runs on and a
// few helpers built on top of them.
//
// Commands work against an afero.Fs so the same code drives the real disk
// and the in-memory filesystem used in tests.
package filesystem
