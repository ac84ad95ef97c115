package remove

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
)

// RemoveAppOptions holds options for removing an app's stored copies
type RemoveAppOptions struct {
	Env  *internal.Env
	Name string
	// Machine removes another machine's copies instead of this machine's.
	Machine string
	// All removes the app from every machine and from the rules.
	All bool
}

// RemoveAppResult describes what was removed
type RemoveAppResult struct {
	Name    string
	Machine string
	All     bool
	// Deleted is false when there were no stored copies to delete.
	Deleted   bool
	Cancelled bool
	Committed bool
}

// RemoveApp deletes stored copies of an app. By default only this machine's
// copies and override go; All deletes the whole app after confirmation.
func RemoveApp(ctx context.Context, opts RemoveAppOptions) (*RemoveAppResult, error) {
	logger := logging.GetLogger("commands.remove")
	defer logging.LogOperationStart(logger, "remove-app")()

	if opts.Machine != "" && opts.All {
		return nil, errors.New(errors.ErrInvalidInput, "cannot combine a machine with removing from all machines").
			WithHint("use --machine <id> for one machine or --all for every machine")
	}

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if _, err := st.Rules.App(opts.Name); err != nil {
		return nil, err
	}
	result := &RemoveAppResult{Name: opts.Name, All: opts.All}

	if opts.All {
		ok, err := env.Approve(fmt.Sprintf("Remove %s from all machines?", opts.Name))
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Cancelled = true
			return result, nil
		}

		dir := st.Layout.AppDir(opts.Name)
		result.Deleted = filesystem.Exists(env.Fs, dir)
		if err := env.Fs.RemoveAll(dir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", dir)
		}
		st.Rules.RemoveApp(opts.Name)
		if err := st.SaveRules(env); err != nil {
			return nil, err
		}
		result.Committed, err = st.Commit(ctx, fmt.Sprintf("Remove %s app from all machines", opts.Name))
		if err != nil {
			return nil, err
		}
		logger.Info().Str("app", opts.Name).Msg("App removed from all machines")
		return result, nil
	}

	target := env.MachineID()
	if opts.Machine != "" {
		if !st.Machines.Has(opts.Machine) {
			return nil, errors.Newf(errors.ErrMachineNotRegistered, "machine %q is not registered", opts.Machine).
				WithDetail("machine", opts.Machine).
				WithHint("run 'drifters list' to see the registered machines")
		}
		target = opts.Machine
	}
	result.Machine = target

	dir := st.Layout.MachineDir(opts.Name, target)
	result.Deleted = filesystem.Exists(env.Fs, dir)
	if err := env.Fs.RemoveAll(dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", dir)
	}
	delete(st.Rules.Apps[opts.Name].Machines, target)
	if err := st.SaveRules(env); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Remove %s configs from machine %s", opts.Name, target)
	if target != env.MachineID() {
		message += fmt.Sprintf(" (via %s)", env.MachineID())
	}
	result.Committed, err = st.Commit(ctx, message)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("app", opts.Name).Str("machine", target).Bool("deleted", result.Deleted).Msg("Machine copies removed")
	return result, nil
}

// RemoveMachineOptions holds options for unregistering a machine
type RemoveMachineOptions struct {
	Env *internal.Env
	ID  string
}

// RemoveMachineResult describes the removal
type RemoveMachineResult struct {
	ID               string
	DirsRemoved      int
	OverridesRemoved int
	// LocalConfigRemoved is true when the removed machine was this one.
	LocalConfigRemoved bool
	Cancelled          bool
	Committed          bool
}

// RemoveMachine deletes a machine's stored copies in every app, its
// overrides and its registry entry. Removing this machine also deletes the
// local config.
func RemoveMachine(ctx context.Context, opts RemoveMachineOptions) (*RemoveMachineResult, error) {
	logger := logging.GetLogger("commands.remove")
	defer logging.LogOperationStart(logger, "remove-machine")()

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if !st.Machines.Has(opts.ID) {
		return nil, errors.Newf(errors.ErrMachineNotRegistered, "machine %q is not registered", opts.ID).
			WithDetail("machine", opts.ID).
			WithHint("run 'drifters list' to see the registered machines")
	}

	self := opts.ID == env.MachineID()
	question := fmt.Sprintf("Remove machine %s and all its stored configs?", opts.ID)
	if self {
		question = fmt.Sprintf("Remove this machine (%s), its stored configs and its local config?", opts.ID)
	}
	ok, err := env.Approve(question)
	if err != nil {
		return nil, err
	}
	result := &RemoveMachineResult{ID: opts.ID}
	if !ok {
		result.Cancelled = true
		return result, nil
	}

	for _, app := range st.Rules.AppNames() {
		dir := st.Layout.MachineDir(app, opts.ID)
		if !filesystem.Exists(env.Fs, dir) {
			continue
		}
		if err := env.Fs.RemoveAll(dir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", dir)
		}
		result.DirsRemoved++
	}
	result.OverridesRemoved = st.Rules.RemoveMachine(opts.ID)
	st.Machines.Remove(opts.ID)

	if err := st.SaveRules(env); err != nil {
		return nil, err
	}
	if err := st.SaveMachines(env); err != nil {
		return nil, err
	}
	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Remove machine %s", opts.ID))
	if err != nil {
		return nil, err
	}

	if self {
		if err := env.Fs.Remove(env.Paths.ConfigFile()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", env.Paths.ConfigFile())
		}
		env.Config = nil
		result.LocalConfigRemoved = true
	}

	logger.Info().
		Str("machine", opts.ID).
		Int("dirs", result.DirsRemoved).
		Int("overrides", result.OverridesRemoved).
		Msg("Machine removed")
	return result, nil
}
