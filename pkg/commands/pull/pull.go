package pull

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/merge"
	"github.com/rs/zerolog"
)

// Action is what a pull does to one local file
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
	// ActionDeclined means the user answered no.
	ActionDeclined Action = "declined"
	// ActionNoVersions means no machine has pushed the file.
	ActionNoVersions Action = "no-versions"
)

// PullOptions holds options for applying the agreed versions locally
type PullOptions struct {
	Env *internal.Env
	// App limits the pull to one app. Empty pulls every app.
	App string
	// Machine only considers the copies pushed by this machine.
	Machine string
	// OS overrides the OS tier used to resolve filesets.
	OS string
	// DryRun computes the changes without writing.
	DryRun bool
}

// Change is the plan and outcome for one local file
type Change struct {
	App      string
	Path     string
	Action   Action
	Before   string
	After    string
	Source   string
	Decision merge.Decision
}

// PullResult summarizes a pull
type PullResult struct {
	Changes  []Change
	Warnings []string
	DryRun   bool
}

// Applied returns the changes that were written, or would be on a dry run.
func (r *PullResult) Applied() []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Action == ActionCreate || c.Action == ActionUpdate {
			out = append(out, c)
		}
	}
	return out
}

// Pull merges the stored copies of every target file and writes the
// agreed content, keeping each file's exclude sections. Malformed content
// and lock errors abort; other per-file problems become warnings.
func Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	logger := logging.GetLogger("commands.pull")
	defer logging.LogOperationStart(logger, "pull")()

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if opts.Machine != "" && !st.Machines.Has(opts.Machine) {
		return nil, errors.Newf(errors.ErrMachineNotRegistered, "machine %q is not registered", opts.Machine).
			WithDetail("machine", opts.Machine).
			WithHint("run 'drifters list' to see the registered machines")
	}

	apps, err := st.Rules.Select(opts.App)
	if err != nil {
		return nil, err
	}

	os := env.OS
	if opts.OS != "" {
		os = opts.OS
	}

	result := &PullResult{DryRun: opts.DryRun}
	for _, name := range apps {
		for _, target := range env.Targets(st.Rules.Apps[name], os) {
			change, err := pullFile(ctx, env, st, name, target.Path, opts, logger)
			if err != nil {
				if errors.IsFatal(err) {
					return nil, err
				}
				logger.Warn().Err(err).Str("path", target.Path).Msg("Skipping file")
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", target.Path, err))
				continue
			}
			result.Changes = append(result.Changes, change)
		}
	}

	logger.Info().
		Int("files", len(result.Changes)).
		Int("changed", len(result.Applied())).
		Bool("dry_run", opts.DryRun).
		Msg("Pull complete")
	return result, nil
}

func pullFile(ctx context.Context, env *internal.Env, st *internal.State, app, path string, opts PullOptions, logger zerolog.Logger) (Change, error) {
	in, err := env.PlanFile(ctx, st, app, path, opts.Machine)
	if err != nil {
		return Change{}, err
	}

	change := Change{
		App:      app,
		Path:     path,
		Before:   in.Local,
		After:    in.After,
		Source:   in.Winner.Machine,
		Decision: in.Winner.Decision,
	}

	switch {
	case in.Versions == 0:
		change.Action = ActionNoVersions
		return change, nil
	case !in.Changed():
		change.Action = ActionUnchanged
		return change, nil
	case !in.LocalExists:
		change.Action = ActionCreate
	default:
		change.Action = ActionUpdate
	}

	logger.Debug().
		Str("path", path).
		Str("source", change.Source).
		Str("decision", string(change.Decision)).
		Str("action", string(change.Action)).
		Msg("Planned change")

	if opts.DryRun {
		return change, nil
	}

	ok, err := env.Proceed(fmt.Sprintf("%s %s with the version from %s?", verb(change.Action), path, change.Source))
	if err != nil {
		return change, err
	}
	if !ok {
		change.Action = ActionDeclined
		return change, nil
	}

	if err := filesystem.WriteFileAtomic(env.Fs, path, []byte(in.After), 0644); err != nil {
		return change, err
	}
	return change, nil
}

func verb(a Action) string {
	if a == ActionCreate {
		return "Create"
	}
	return "Update"
}
