// Package transfer moves sync rules between the store and local TOML or
// YAML files.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// ExportOptions holds options for writing rules to a local file
type ExportOptions struct {
	Env  *internal.Env
	Path string
	// App exports a single app. Empty exports every app.
	App string
}

// ExportResult describes the written file
type ExportResult struct {
	Path   string
	Format rules.Format
	Apps   []string
}

// Export writes the shared rules, or one app of them, to a local file.
// The format follows the file extension.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	logger := logging.GetLogger("commands.export")
	defer logging.LogOperationStart(logger, "export")()

	env := opts.Env
	path := filepath.Clean(opts.Path)
	format, err := rules.FormatFor(path)
	if err != nil {
		return nil, err
	}

	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result := &ExportResult{Path: path, Format: format}
	if opts.App != "" {
		err = rules.ExportApp(env.Fs, path, st.Rules, opts.App)
		result.Apps = []string{opts.App}
	} else {
		err = rules.ExportRules(env.Fs, path, st.Rules)
		result.Apps = st.Rules.AppNames()
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", path).Strs("apps", result.Apps).Msg("Rules exported")
	return result, nil
}

// ImportOptions holds options for reading rules from a local file
type ImportOptions struct {
	Env  *internal.Env
	Path string
	// App imports a single app. Empty imports every app in the file.
	App string
}

// ImportResult lists the apps written to the store
type ImportResult struct {
	Added     []string
	Replaced  []string
	Committed bool
}

// Import defines or replaces apps in the shared rules from a local file
// and publishes the result.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	logger := logging.GetLogger("commands.import")
	defer logging.LogOperationStart(logger, "import")()

	env := opts.Env
	incoming := rules.NewSyncRules()
	if opts.App != "" {
		app, err := rules.ImportApp(env.Fs, opts.Path, opts.App)
		if err != nil {
			return nil, err
		}
		incoming.Apps[opts.App] = app
	} else {
		var err error
		if incoming, err = rules.ImportRules(env.Fs, opts.Path); err != nil {
			return nil, err
		}
	}

	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result := &ImportResult{}
	for _, name := range incoming.AppNames() {
		if err := rules.ValidateName("app", name); err != nil {
			return nil, err
		}
		if st.Rules.SetApp(name, incoming.Apps[name]) {
			result.Replaced = append(result.Replaced, name)
		} else {
			result.Added = append(result.Added, name)
		}
	}
	if len(result.Added)+len(result.Replaced) == 0 {
		logger.Info().Str("path", opts.Path).Msg("No apps to import")
		return result, nil
	}

	if err := st.SaveRules(env); err != nil {
		return nil, err
	}
	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Import rules from %s on %s", filepath.Base(opts.Path), env.MachineID()))
	if err != nil {
		return nil, err
	}
	return result, nil
}
