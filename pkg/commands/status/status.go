package status

import (
	"context"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/sections"
	"github.com/arthur-debert/drifters/pkg/style"
)

// File states, shared with the renderer.
const (
	StateUpToDate     = style.StateUpToDate
	StateLocalChanges = style.StateLocalChanges
	StateIncoming     = style.StateIncoming
	StateNotPushed    = style.StateNotPushed
	StateError        = style.StateError
)

// StatusOptions holds options for the status report
type StatusOptions struct {
	Env *internal.Env
	App string
}

// FileStatus is the state of one local file
type FileStatus struct {
	Path  string
	State string
	// Source is the machine whose version a pull would apply.
	Source  string
	Message string
}

// AppStatus groups the files of one app
type AppStatus struct {
	Name  string
	Files []FileStatus
}

// StatusResult is the report for this machine
type StatusResult struct {
	Machine    string
	RepoURL    string
	OS         string
	Registered bool
	Apps       []AppStatus
}

// Status reports, per app and file, whether the file is up to date, has
// local changes not pushed yet, has incoming changes a pull would apply, or
// was never pushed from this machine. Status writes nothing.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	logger := logging.GetLogger("commands.status")
	defer logging.LogOperationStart(logger, "status")()

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	apps, err := st.Rules.Select(opts.App)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Machine:    env.MachineID(),
		RepoURL:    env.Config.RepoURL,
		OS:         env.OS,
		Registered: st.Registered,
	}
	for _, name := range apps {
		as := AppStatus{Name: name}
		for _, target := range env.Targets(st.Rules.Apps[name], env.OS) {
			fs, err := fileStatus(ctx, env, st, name, target)
			if err != nil {
				if errors.IsFatal(err) {
					return nil, err
				}
				logger.Warn().Err(err).Str("path", target.Path).Msg("Cannot determine status")
				fs = FileStatus{Path: target.Path, State: StateError, Message: err.Error()}
			}
			as.Files = append(as.Files, fs)
		}
		result.Apps = append(result.Apps, as)
	}
	return result, nil
}

func fileStatus(ctx context.Context, env *internal.Env, st *internal.State, app string, target internal.Target) (FileStatus, error) {
	fs := FileStatus{Path: target.Path}

	in, err := env.PlanFile(ctx, st, app, target.Path, "")
	if err != nil {
		return fs, err
	}
	fs.Source = in.Winner.Machine

	if target.Exists {
		stored, found, err := filesystem.ReadIfExists(env.Fs, st.Layout.MachineFile(app, env.MachineID(), target.Path))
		if err != nil {
			return fs, err
		}
		if !found {
			fs.State = StateNotPushed
			return fs, nil
		}

		syncable, tagged, err := sections.ExtractSyncable(in.Local, sections.CommentPrefix(target.Path))
		if err != nil {
			return fs, err
		}
		if !tagged {
			syncable = in.Local
		}
		if syncable != stored {
			fs.State = StateLocalChanges
			return fs, nil
		}
	}

	if in.Changed() {
		fs.State = StateIncoming
		return fs, nil
	}
	if !target.Exists {
		fs.State = StateNotPushed
		fs.Message = "file does not exist on this machine"
		return fs, nil
	}
	fs.State = StateUpToDate
	return fs, nil
}
