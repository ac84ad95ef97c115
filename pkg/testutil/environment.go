// pkg/testutil/environment.go
// DEPENDENCIES: FakeStore
// PURPOSE: Isolated directories for command tests: a home, a config dir and a remote

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Environment is a set of temp directories that stand in for one machine
// and the shared remote.
type Environment struct {
	Root      string
	Home      string
	ConfigDir string
	Remote    string
	Store     *FakeStore

	t *testing.T
}

// NewEnvironment creates the directories and points HOME and the drifters
// config dir at them for the duration of the test.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()
	root := t.TempDir()
	env := &Environment{
		Root:      root,
		Home:      filepath.Join(root, "home"),
		ConfigDir: filepath.Join(root, "config"),
		Remote:    filepath.Join(root, "remote"),
		Store:     NewFakeStore(),
		t:         t,
	}
	for _, dir := range []string{env.Home, env.ConfigDir, env.Remote} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", env.Home)
	t.Setenv("DRIFTERS_CONFIG_DIR", env.ConfigDir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	return env
}

// Machine returns a fresh home and config dir for another machine sharing
// the same remote and store.
func (e *Environment) Machine(name string) (home, configDir string) {
	e.t.Helper()
	home = filepath.Join(e.Root, "machines", name, "home")
	configDir = filepath.Join(e.Root, "machines", name, "config")
	for _, dir := range []string{home, configDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			e.t.Fatalf("create %s: %v", dir, err)
		}
	}
	return home, configDir
}

// WriteFile writes content to path, creating parents.
func (e *Environment) WriteFile(path, content string) {
	e.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test if it is missing.
func (e *Environment) ReadFile(path string) string {
	e.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// RemoteFile returns the content of a path inside the remote, or "" and
// false when it does not exist.
func (e *Environment) RemoteFile(rel string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(e.Remote, filepath.FromSlash(rel)))
	if err != nil {
		return "", false
	}
	return string(data), true
}
