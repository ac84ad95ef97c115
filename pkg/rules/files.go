package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Locations inside the store, relative to its root.
const (
	MetaDir      = ".drifters"
	RulesFile    = ".drifters/sync-rules.toml"
	MachinesFile = ".drifters/machines.toml"
)

// Format is a serialization format for rule files.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unsupported file type %q", filepath.Ext(path)).
		WithDetail("path", path).
		WithHint("use a .toml, .yaml or .yml file")
}

// LoadRules reads the sync rules of the checkout at repoDir. A store
// without a rules file has no apps.
func LoadRules(fs afero.Fs, repoDir string) (*SyncRules, error) {
	r := NewSyncRules()
	found, err := readFile(fs, filepath.Join(repoDir, RulesFile), FormatTOML, r)
	if err != nil {
		return nil, err
	}
	if !found {
		logger := logging.GetLogger("rules")
		logger.Debug().Str("repo", repoDir).Msg("No sync rules file, starting empty")
	}
	if r.Apps == nil {
		r.Apps = make(map[string]*AppDefinition)
	}
	return r, nil
}

// SaveRules writes the sync rules into the checkout at repoDir.
func SaveRules(fs afero.Fs, repoDir string, r *SyncRules) error {
	return writeFile(fs, filepath.Join(repoDir, RulesFile), FormatTOML, r)
}

// LoadMachines reads the machine registry of the checkout at repoDir.
func LoadMachines(fs afero.Fs, repoDir string) (*MachineRegistry, error) {
	m := NewMachineRegistry()
	if _, err := readFile(fs, filepath.Join(repoDir, MachinesFile), FormatTOML, m); err != nil {
		return nil, err
	}
	if m.Machines == nil {
		m.Machines = make(map[string]MachineInfo)
	}
	return m, nil
}

// SaveMachines writes the machine registry into the checkout at repoDir.
func SaveMachines(fs afero.Fs, repoDir string, m *MachineRegistry) error {
	return writeFile(fs, filepath.Join(repoDir, MachinesFile), FormatTOML, m)
}

// ExportRules writes all rules to path, formatted by its extension.
func ExportRules(fs afero.Fs, path string, r *SyncRules) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	return writeFile(fs, path, format, r)
}

// ExportApp writes a single app to path as a rules document holding only it.
func ExportApp(fs afero.Fs, path string, r *SyncRules, name string) error {
	app, err := r.App(name)
	if err != nil {
		return err
	}
	single := NewSyncRules()
	single.Apps[name] = app
	return ExportRules(fs, path, single)
}

// ImportRules reads a complete rules document from path.
func ImportRules(fs afero.Fs, path string) (*SyncRules, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	r := NewSyncRules()
	found, err := readFile(fs, path, format, r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.ErrFileNotFound, "rules file %s does not exist", path).
			WithDetail("path", path)
	}
	if r.Apps == nil {
		r.Apps = make(map[string]*AppDefinition)
	}
	return r, nil
}

// ImportApp reads the named app from the rules document at path.
func ImportApp(fs afero.Fs, path, name string) (*AppDefinition, error) {
	r, err := ImportRules(fs, path)
	if err != nil {
		return nil, err
	}
	app, ok := r.Apps[name]
	if !ok || app == nil {
		return nil, errors.Newf(errors.ErrAppNotFound, "app %q not found in %s", name, path).
			WithDetail("app", name).
			WithDetail("path", path)
	}
	return app, nil
}

func readFile(fs afero.Fs, path string, format Format, v interface{}) (bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).
			WithDetail("path", path)
	}

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	default:
		err = toml.Unmarshal(data, v)
	}
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

func writeFile(fs afero.Fs, path string, format Format, v interface{}) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(v)
		if err == nil {
			err = enc.Close()
		}
	default:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		err = enc.Encode(v)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot encode %s", path)
	}

	return filesystem.WriteFileAtomic(fs, path, buf.Bytes(), 0644)
}
