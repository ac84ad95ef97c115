// pkg/rules/rules_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test sync rules, the machine registry and their file formats

package rules_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRules() *rules.SyncRules {
	r := rules.NewSyncRules()
	r.Apps["zsh"] = &rules.AppDefinition{
		Include:      []string{"~/.zshrc", "~/.zshrc"},
		Exclude:      []string{"history"},
		IncludeMacOS: []string{"~/.zprofile"},
		Machines: map[string]rules.MachineOverride{
			"work": {Exclude: []string{"**/secrets.zsh"}},
		},
	}
	r.Apps["git"] = &rules.AppDefinition{Include: []string{"~/.gitconfig"}}
	return r
}

func TestSyncRules_AddApp(t *testing.T) {
	r := rules.NewSyncRules()
	require.NoError(t, r.AddApp("vim", &rules.AppDefinition{Include: []string{"~/.vimrc"}}))

	err := r.AddApp("vim", &rules.AppDefinition{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	err = r.AddApp("", &rules.AppDefinition{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestSyncRules_Select(t *testing.T) {
	r := sampleRules()

	all, err := r.Select("")
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "zsh"}, all)

	one, err := r.Select("zsh")
	require.NoError(t, err)
	assert.Equal(t, []string{"zsh"}, one)

	_, err = r.Select("emacs")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))
	assert.NotEmpty(t, errors.Hint(err))
}

func TestAppDefinition_OSPatterns(t *testing.T) {
	app := &rules.AppDefinition{
		IncludeMacOS:   []string{"mac"},
		ExcludeLinux:   []string{"nolinux"},
		IncludeWindows: []string{"win"},
	}

	inc, _, known := app.OSPatterns(rules.OSMacOS)
	assert.True(t, known)
	assert.Equal(t, []string{"mac"}, inc)

	_, exc, known := app.OSPatterns(rules.OSLinux)
	assert.True(t, known)
	assert.Equal(t, []string{"nolinux"}, exc)

	_, _, known = app.OSPatterns("plan9")
	assert.False(t, known)
}

func TestAppDefinition_AddMachineExclude(t *testing.T) {
	app := &rules.AppDefinition{}

	assert.True(t, app.AddMachineExclude("laptop", "**/.env"))
	assert.False(t, app.AddMachineExclude("laptop", "**/.env"))
	assert.True(t, app.AddMachineExclude("laptop", "**/other"))
	assert.Equal(t, []string{"**/.env", "**/other"}, app.Machines["laptop"].Exclude)
}

func TestMachineRegistry(t *testing.T) {
	m := rules.NewMachineRegistry()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m.Register("laptop", rules.OSMacOS, now)
	m.Register("server", rules.OSLinux, now)
	assert.True(t, m.Has("laptop"))
	assert.False(t, m.Has("desktop"))
	assert.Equal(t, []string{"laptop", "server"}, m.IDs())

	later := now.Add(time.Hour)
	m.Touch("laptop", later)
	m.Touch("unknown", later)
	assert.Equal(t, later, m.Machines["laptop"].LastSync)
	assert.False(t, m.Has("unknown"))
}

func TestLoadSaveRules(t *testing.T) {
	fs := afero.NewMemMapFs()

	empty, err := rules.LoadRules(fs, "/repo")
	require.NoError(t, err)
	assert.Empty(t, empty.Apps)

	require.NoError(t, rules.SaveRules(fs, "/repo", sampleRules()))

	loaded, err := rules.LoadRules(fs, "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "zsh"}, loaded.AppNames())
	assert.Equal(t, []string{"~/.zshrc", "~/.zshrc"}, loaded.Apps["zsh"].Include)
	assert.Equal(t, []string{"~/.zprofile"}, loaded.Apps["zsh"].IncludeMacOS)
	assert.Equal(t, []string{"**/secrets.zsh"}, loaded.Apps["zsh"].Machines["work"].Exclude)
}

func TestLoadRules_ParsesHandWrittenFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
[apps.nvim]
include = ["~/.config/nvim/**/*.lua"]
exclude = [".git"]
include_linux = ["~/.local/share/nvim/site/plugin.vim"]

[apps.nvim.machines.pi]
exclude = ["**/heavy.lua"]
`
	require.NoError(t, afero.WriteFile(fs, "/repo/.drifters/sync-rules.toml", []byte(content), 0644))

	loaded, err := rules.LoadRules(fs, "/repo")
	require.NoError(t, err)
	app, err := loaded.App("nvim")
	require.NoError(t, err)
	assert.Equal(t, []string{"~/.config/nvim/**/*.lua"}, app.Include)
	assert.Equal(t, []string{"~/.local/share/nvim/site/plugin.vim"}, app.IncludeLinux)
	assert.Equal(t, []string{"**/heavy.lua"}, app.Machines["pi"].Exclude)
}

func TestLoadRules_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/.drifters/sync-rules.toml", []byte("apps = ["), 0644))

	_, err := rules.LoadRules(fs, "/repo")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadSaveMachines(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := rules.NewMachineRegistry()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.Register("laptop", rules.OSMacOS, now)

	require.NoError(t, rules.SaveMachines(fs, "/repo", m))

	raw, err := afero.ReadFile(fs, "/repo/.drifters/machines.toml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "last_sync = 2024-05-01T12:00:00Z", "sync time is a TOML datetime, not a string")

	loaded, err := rules.LoadMachines(fs, "/repo")
	require.NoError(t, err)
	require.True(t, loaded.Has("laptop"))
	assert.Equal(t, rules.OSMacOS, loaded.Machines["laptop"].OS)
	assert.True(t, now.Equal(loaded.Machines["laptop"].LastSync))

	// a second round trip keeps the registry readable
	loaded.Touch("laptop", now.Add(time.Hour))
	require.NoError(t, rules.SaveMachines(fs, "/repo", loaded))
	again, err := rules.LoadMachines(fs, "/repo")
	require.NoError(t, err)
	assert.True(t, now.Add(time.Hour).Equal(again.Machines["laptop"].LastSync))
}

func TestLoadMachines_ParsesHandWrittenFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
[machines.laptop]
os = "macos"
last_sync = 2024-05-01T12:00:00Z

[machines.pi]
os = "linux"
`
	require.NoError(t, afero.WriteFile(fs, "/repo/.drifters/machines.toml", []byte(content), 0644))

	loaded, err := rules.LoadMachines(fs, "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"laptop", "pi"}, loaded.IDs())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), loaded.Machines["laptop"].LastSync.UTC())
	assert.True(t, loaded.Machines["pi"].LastSync.IsZero())
}

func TestExportImport(t *testing.T) {
	for _, path := range []string{"/tmp/rules.toml", "/tmp/rules.yaml", "/tmp/rules.yml"} {
		t.Run(path, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, rules.ExportRules(fs, path, sampleRules()))

			imported, err := rules.ImportRules(fs, path)
			require.NoError(t, err)
			assert.Equal(t, []string{"git", "zsh"}, imported.AppNames())
			assert.Equal(t, []string{"history"}, imported.Apps["zsh"].Exclude)
		})
	}
}

func TestExportImportApp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, rules.ExportApp(fs, "/tmp/zsh.yaml", sampleRules(), "zsh"))

	exported, err := rules.ImportRules(fs, "/tmp/zsh.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"zsh"}, exported.AppNames())

	app, err := rules.ImportApp(fs, "/tmp/zsh.yaml", "zsh")
	require.NoError(t, err)
	assert.Equal(t, []string{"~/.zprofile"}, app.IncludeMacOS)

	_, err = rules.ImportApp(fs, "/tmp/zsh.yaml", "git")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))

	err = rules.ExportApp(fs, "/tmp/none.toml", sampleRules(), "emacs")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))
}

func TestFormatFor(t *testing.T) {
	_, err := rules.FormatFor("/tmp/rules.json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	format, err := rules.FormatFor("/tmp/RULES.YML")
	require.NoError(t, err)
	assert.Equal(t, rules.FormatYAML, format)

	_, err = rules.ImportRules(afero.NewMemMapFs(), "/tmp/missing.toml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestSyncRules_RenameAndRemove(t *testing.T) {
	r := sampleRules()

	require.NoError(t, r.RenameApp("zsh", "shell"))
	_, err := r.App("zsh")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))
	_, err = r.App("shell")
	assert.NoError(t, err)

	r.Apps["git"] = &rules.AppDefinition{}
	err = r.RenameApp("git", "shell")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	assert.True(t, r.RemoveApp("git"))
	assert.False(t, r.RemoveApp("git"))
}

func TestSyncRules_MachineOverrides(t *testing.T) {
	r := rules.NewSyncRules()
	r.Apps["a"] = &rules.AppDefinition{Machines: map[string]rules.MachineOverride{"old": {Exclude: []string{"x"}}}}
	r.Apps["b"] = &rules.AppDefinition{Machines: map[string]rules.MachineOverride{}}

	assert.Equal(t, 1, r.RenameMachine("old", "new"))
	assert.Equal(t, []string{"x"}, r.Apps["a"].Machines["new"].Exclude)
	assert.Equal(t, 1, r.RemoveMachine("new"))
	assert.Empty(t, r.Apps["a"].Machines)
}

func TestMachineRegistry_RenameRemove(t *testing.T) {
	m := rules.NewMachineRegistry()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m.Register("laptop", rules.OSMacOS, now)
	m.Register("desktop", rules.OSLinux, now)

	require.NoError(t, m.Rename("laptop", "mbp"))
	assert.True(t, m.Has("mbp"))
	assert.False(t, m.Has("laptop"))

	assert.True(t, errors.IsErrorCode(m.Rename("laptop", "x"), errors.ErrMachineNotRegistered))
	assert.True(t, errors.IsErrorCode(m.Rename("mbp", "desktop"), errors.ErrAlreadyExists))

	assert.True(t, m.Remove("mbp"))
	assert.Equal(t, []string{"desktop"}, m.IDs())
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "laptop", false},
		{"dashes", "work-mbp", false},
		{"empty", "", true},
		{"blank", "  ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"dotdot", "..", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.ValidateName("machine", tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
