package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/lock"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels, e.g. DRIFTERS_LOCK__TIMEOUT=2m.
const EnvPrefix = "DRIFTERS_"

// Config is the local configuration of one machine.
type Config struct {
	MachineID string     `koanf:"machine_id"`
	RepoURL   string     `koanf:"repo_url"`
	Lock      LockConfig `koanf:"lock"`
	// PreferredEditor opens the sync rules for edit-rules. Empty falls back
	// to $VISUAL, then $EDITOR.
	PreferredEditor string `koanf:"preferred_editor"`
}

// LockConfig tunes the working copy lock.
type LockConfig struct {
	StaleAfter   time.Duration `koanf:"stale_after"`
	Timeout      time.Duration `koanf:"timeout"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

// LockOptions converts the settings into lock options.
func (c LockConfig) LockOptions() lock.Options {
	return lock.Options{
		StaleAfter:   c.StaleAfter,
		Timeout:      c.Timeout,
		PollInterval: c.PollInterval,
	}
}

// New returns a config for a machine joining the store at repoURL.
func New(machineID, repoURL string) *Config {
	return &Config{
		MachineID: machineID,
		RepoURL:   repoURL,
		Lock:      defaultLock(),
	}
}

func defaultLock() LockConfig {
	return LockConfig{
		StaleAfter:   lock.DefaultStaleAfter,
		Timeout:      lock.DefaultTimeout,
		PollInterval: lock.DefaultPollInterval,
	}
}

func defaults() map[string]interface{} {
	d := defaultLock()
	return map[string]interface{}{
		"lock.stale_after":   d.StaleAfter.String(),
		"lock.timeout":       d.Timeout.String(),
		"lock.poll_interval": d.PollInterval.String(),
	}
}

// Load reads the config file at path. A missing file means the machine has
// not joined a store yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrNotInitialized, "drifters is not initialized on this machine").
				WithDetail("path", path).
				WithHint("run 'drifters init <repo-url>'")
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path).
			WithDetail("path", path)
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "invalid configuration in %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required keys and lock settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MachineID) == "" {
		return errors.New(errors.ErrConfigValid, "machine_id is not set").
			WithHint("run 'drifters init <repo-url>' again")
	}
	if strings.ContainsAny(c.MachineID, `/\`) {
		return errors.Newf(errors.ErrConfigValid, "machine_id %q cannot contain path separators", c.MachineID)
	}
	if strings.TrimSpace(c.RepoURL) == "" {
		return errors.New(errors.ErrConfigValid, "repo_url is not set").
			WithHint("run 'drifters init <repo-url>' again")
	}
	if c.Lock.StaleAfter <= 0 || c.Lock.Timeout <= 0 || c.Lock.PollInterval <= 0 {
		return errors.New(errors.ErrConfigValid, "lock durations must be positive")
	}
	return nil
}

type savedLock struct {
	StaleAfter   string `toml:"stale_after,omitempty"`
	Timeout      string `toml:"timeout,omitempty"`
	PollInterval string `toml:"poll_interval,omitempty"`
}

type savedConfig struct {
	MachineID       string     `toml:"machine_id"`
	RepoURL         string     `toml:"repo_url"`
	PreferredEditor string     `toml:"preferred_editor,omitempty"`
	Lock            *savedLock `toml:"lock,omitempty"`
}

// Save writes cfg to path as TOML. Lock settings equal to the defaults are
// left out.
func Save(fs afero.Fs, path string, cfg *Config) error {
	out := savedConfig{MachineID: cfg.MachineID, RepoURL: cfg.RepoURL, PreferredEditor: cfg.PreferredEditor}

	d := defaultLock()
	var sl savedLock
	if cfg.Lock.StaleAfter != 0 && cfg.Lock.StaleAfter != d.StaleAfter {
		sl.StaleAfter = cfg.Lock.StaleAfter.String()
	}
	if cfg.Lock.Timeout != 0 && cfg.Lock.Timeout != d.Timeout {
		sl.Timeout = cfg.Lock.Timeout.String()
	}
	if cfg.Lock.PollInterval != 0 && cfg.Lock.PollInterval != d.PollInterval {
		sl.PollInterval = cfg.Lock.PollInterval.String()
	}
	if sl != (savedLock{}) {
		out.Lock = &sl
	}

	var buf bytes.Buffer
	if err := gotoml.NewEncoder(&buf).Encode(out); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return filesystem.WriteFileAtomic(fs, path, buf.Bytes(), 0644)
}

// DetectMachineID returns a default machine ID derived from the hostname.
func DetectMachineID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}
	host = strings.TrimSuffix(host, ".local")
	return strings.NewReplacer("/", "-", `\`, "-", " ", "-").Replace(host)
}

// String renders the effective configuration for display.
func (c *Config) String() string {
	s := fmt.Sprintf("machine_id=%s repo_url=%s lock.stale_after=%s lock.timeout=%s lock.poll_interval=%s",
		c.MachineID, c.RepoURL, c.Lock.StaleAfter, c.Lock.Timeout, c.Lock.PollInterval)
	if c.PreferredEditor != "" {
		s += " preferred_editor=" + c.PreferredEditor
	}
	return s
}
