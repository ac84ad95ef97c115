// Package paths provides the local locations drifters uses on a machine.
// It follows the XDG Base Directory specification and honours overrides
// from the environment.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/mitchellh/go-homedir"
)

// Environment variable names
const (
	// EnvConfigDir overrides the drifters config directory
	EnvConfigDir = "DRIFTERS_CONFIG_DIR"

	// EnvStateDir overrides the drifters state directory
	EnvStateDir = "DRIFTERS_STATE_DIR"
)

// Names below the config and state directories. The working copy and its
// lock must stay siblings.
const (
	AppDirName     = "drifters"
	ConfigFileName = "config.toml"
	WorkingCopy    = "tmp-repo"
	LockFileName   = WorkingCopy + ".lock"
	LogFileName    = "drifters.log"
)

// Paths resolves drifters' local directories.
type Paths struct {
	home      string
	configDir string
	stateDir  string
}

// New resolves paths from the environment.
func New() (*Paths, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot determine home directory")
	}

	p := &Paths{home: home}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = Expand(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	switch {
	case os.Getenv(EnvStateDir) != "":
		p.stateDir = Expand(os.Getenv(EnvStateDir))
	case os.Getenv("XDG_STATE_HOME") != "":
		p.stateDir = filepath.Join(os.Getenv("XDG_STATE_HOME"), AppDirName)
	default:
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p, nil
}

// NewWith builds paths from explicit directories.
func NewWith(home, configDir, stateDir string) *Paths {
	return &Paths{home: home, configDir: configDir, stateDir: stateDir}
}

func (p *Paths) Home() string      { return p.home }
func (p *Paths) ConfigDir() string { return p.configDir }
func (p *Paths) StateDir() string  { return p.stateDir }

// ConfigFile is the machine's local config.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// WorkingCopyDir is the ephemeral checkout of the shared store.
func (p *Paths) WorkingCopyDir() string {
	return filepath.Join(p.configDir, WorkingCopy)
}

// LockFile guards WorkingCopyDir.
func (p *Paths) LockFile() string {
	return filepath.Join(p.configDir, LockFileName)
}

// LogFile is where the rotated debug log is written.
func (p *Paths) LogFile() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// Expand replaces a leading "~" with the home directory. The path is
// returned unchanged when it cannot be expanded.
func Expand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
