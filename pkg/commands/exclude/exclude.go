package exclude

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
)

// ExcludeOptions holds options for excluding a file on this machine
type ExcludeOptions struct {
	Env      *internal.Env
	App      string
	Filename string
}

// ExcludeResult describes the added exclusion
type ExcludeResult struct {
	App     string
	Machine string
	Pattern string
	// AlreadyExcluded is true when the pattern was present and nothing changed.
	AlreadyExcluded bool
	Committed       bool
}

// Pattern returns the machine exclude pattern for a file name.
func Pattern(filename string) string {
	return "**/" + filename
}

// Exclude stops syncing filename of an app on this machine by adding
// "**/<filename>" to the machine's override.
func Exclude(ctx context.Context, opts ExcludeOptions) (*ExcludeResult, error) {
	logger := logging.GetLogger("commands.exclude")
	defer logging.LogOperationStart(logger, "exclude")()

	if opts.Filename == "" {
		return nil, errors.New(errors.ErrInvalidInput, "file name cannot be empty")
	}

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	app, err := st.Rules.App(opts.App)
	if err != nil {
		return nil, err
	}

	machine := env.MachineID()
	pattern := Pattern(filepath.Base(opts.Filename))
	result := &ExcludeResult{App: opts.App, Machine: machine, Pattern: pattern}

	if !app.AddMachineExclude(machine, pattern) {
		logger.Info().Str("app", opts.App).Str("pattern", pattern).Msg("Already excluded")
		result.AlreadyExcluded = true
		return result, nil
	}
	if err := st.SaveRules(env); err != nil {
		return nil, err
	}

	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Exclude %s from %s on %s", opts.Filename, opts.App, machine))
	if err != nil {
		return nil, err
	}
	return result, nil
}
