package rename

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// RenameAppOptions holds options for renaming an app
type RenameAppOptions struct {
	Env     *internal.Env
	OldName string
	NewName string
}

// RenameAppResult describes the rename
type RenameAppResult struct {
	OldName   string
	NewName   string
	Committed bool
}

// RenameApp renames an app in the rules and moves its stored copies.
func RenameApp(ctx context.Context, opts RenameAppOptions) (*RenameAppResult, error) {
	logger := logging.GetLogger("commands.rename")
	defer logging.LogOperationStart(logger, "rename-app")()

	if err := rules.ValidateName("app", opts.NewName); err != nil {
		return nil, err
	}

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Rules.RenameApp(opts.OldName, opts.NewName); err != nil {
		return nil, err
	}

	from, to := st.Layout.AppDir(opts.OldName), st.Layout.AppDir(opts.NewName)
	if filesystem.Exists(env.Fs, from) {
		if err := env.Fs.Rename(from, to); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s to %s", from, to)
		}
	}
	if err := st.SaveRules(env); err != nil {
		return nil, err
	}

	result := &RenameAppResult{OldName: opts.OldName, NewName: opts.NewName}
	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Rename app %s to %s", opts.OldName, opts.NewName))
	if err != nil {
		return nil, err
	}
	logger.Info().Str("from", opts.OldName).Str("to", opts.NewName).Msg("App renamed")
	return result, nil
}

// RenameMachineOptions holds options for renaming a machine
type RenameMachineOptions struct {
	Env   *internal.Env
	OldID string
	NewID string
}

// RenameMachineResult describes the rename
type RenameMachineResult struct {
	OldID             string
	NewID             string
	DirsRenamed       int
	OverridesRenamed  int
	LocalConfigUpdate bool
	Cancelled         bool
	Committed         bool
}

// RenameMachine renames a registered machine: its stored copies in every
// app, its overrides and its registry entry. Renaming this machine also
// updates the local config.
func RenameMachine(ctx context.Context, opts RenameMachineOptions) (*RenameMachineResult, error) {
	logger := logging.GetLogger("commands.rename")
	defer logging.LogOperationStart(logger, "rename-machine")()

	if err := rules.ValidateName("machine", opts.NewID); err != nil {
		return nil, err
	}
	if opts.NewID == opts.OldID {
		return nil, errors.Newf(errors.ErrInvalidInput, "machine is already named %q", opts.OldID)
	}

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Machines.Rename(opts.OldID, opts.NewID); err != nil {
		return nil, err
	}

	result := &RenameMachineResult{OldID: opts.OldID, NewID: opts.NewID}
	ok, err := env.Approve(fmt.Sprintf("Rename machine %s to %s?", opts.OldID, opts.NewID))
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Cancelled = true
		return result, nil
	}

	for _, app := range st.Rules.AppNames() {
		from, to := st.Layout.MachineDir(app, opts.OldID), st.Layout.MachineDir(app, opts.NewID)
		if !filesystem.Exists(env.Fs, from) {
			continue
		}
		if err := env.Fs.Rename(from, to); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s to %s", from, to)
		}
		result.DirsRenamed++
	}
	result.OverridesRenamed = st.Rules.RenameMachine(opts.OldID, opts.NewID)

	if err := st.SaveRules(env); err != nil {
		return nil, err
	}
	if err := st.SaveMachines(env); err != nil {
		return nil, err
	}
	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Rename machine %s to %s", opts.OldID, opts.NewID))
	if err != nil {
		return nil, err
	}

	if opts.OldID == env.MachineID() {
		updated := *env.Config
		updated.MachineID = opts.NewID
		if err := config.Save(env.Fs, env.Paths.ConfigFile(), &updated); err != nil {
			return nil, err
		}
		env.Config = &updated
		result.LocalConfigUpdate = true
	}

	logger.Info().
		Str("from", opts.OldID).
		Str("to", opts.NewID).
		Int("dirs", result.DirsRenamed).
		Msg("Machine renamed")
	return result, nil
}
