package push

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/sections"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Size check thresholds. A push that shrinks a stored copy this much is
// usually an emptied or truncated file.
const (
	SmallFileBytes = 10
	ShrinkFactor   = 10
)

// Status of one file in a push
type Status string

const (
	StatusPushed    Status = "pushed"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
)

// PushOptions holds options for publishing this machine's files
type PushOptions struct {
	Env *internal.Env
	// App limits the push to one app. Empty pushes every app.
	App string
}

// FileResult is the outcome for one local file
type FileResult struct {
	App    string
	Path   string
	Stored string
	Status Status
	Reason string
}

// PushResult summarizes a push
type PushResult struct {
	Files     []FileResult
	Warnings  []string
	Committed bool
}

// Pushed returns how many files were written to the store.
func (r *PushResult) Pushed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusPushed {
			n++
		}
	}
	return n
}

// Risky reports whether replacing a stored copy of storedSize bytes with
// newSize bytes needs confirmation.
func Risky(newSize, storedSize int) bool {
	if newSize < SmallFileBytes && storedSize > SmallFileBytes {
		return true
	}
	return newSize > 0 && storedSize > ShrinkFactor*newSize
}

// Push writes the syncable content of every file in the selected apps'
// filesets to apps/<app>/machines/<id>/<basename> and publishes the result.
// Malformed content aborts the whole push; other per-file problems become
// warnings.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	logger := logging.GetLogger("commands.push")
	defer logging.LogOperationStart(logger, "push")()

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

	result := &PushResult{}
	machine := env.MachineID()
	for _, name := range apps {
		app := st.Rules.Apps[name]
		stored := make(map[string]string)

		for _, path := range env.Resolver().Resolve(app, machine, env.OS) {
			base := filepath.Base(path)
			if first, dup := stored[base]; dup {
				msg := fmt.Sprintf("%s: skipped, %s is already stored as %s", path, first, base)
				logger.Warn().Str("app", name).Str("path", path).Str("first", first).Msg("Duplicate file name in fileset")
				result.Warnings = append(result.Warnings, msg)
				continue
			}
			stored[base] = path

			fr, err := pushFile(env, st, name, path, logger)
			if err != nil {
				if errors.IsFatal(err) {
					return nil, err
				}
				logger.Warn().Err(err).Str("path", path).Msg("Skipping file")
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", path, err))
				continue
			}
			result.Files = append(result.Files, fr)
		}
	}

	if result.Pushed() == 0 {
		logger.Info().Msg("Nothing to push")
		return result, nil
	}

	st.Machines.Touch(machine, env.Now())
	if err := st.SaveMachines(env); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Update configs from %s", machine)
	if len(apps) == 1 {
		message = fmt.Sprintf("Update %s configs from %s", apps[0], machine)
	}
	result.Committed, err = st.Commit(ctx, message)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("files", result.Pushed()).Bool("committed", result.Committed).Msg("Push complete")
	return result, nil
}

func pushFile(env *internal.Env, st *internal.State, app, path string, logger zerolog.Logger) (FileResult, error) {
	machine := env.MachineID()
	target := st.Layout.MachineFile(app, machine, path)
	rel, _ := st.Layout.Rel(target)
	fr := FileResult{App: app, Path: path, Stored: rel}

	data, err := afero.ReadFile(env.Fs, path)
	if err != nil {
		return fr, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).WithDetail("path", path)
	}

	payload := string(data)
	syncable, tagged, err := sections.ExtractSyncable(payload, sections.CommentPrefix(path))
	if err != nil {
		return fr, errors.Wrapf(err, errors.ErrMalformedContent, "cannot push %s", path).WithDetail("path", path)
	}
	if tagged {
		payload = syncable
	}

	existing, found, err := filesystem.ReadIfExists(env.Fs, target)
	if err != nil {
		return fr, err
	}
	if found && existing == payload {
		fr.Status = StatusUnchanged
		return fr, nil
	}

	if found && Risky(len(payload), len(existing)) {
		logger.Warn().
			Str("path", path).
			Int("size", len(payload)).
			Int("stored", len(existing)).
			Msg("File is much smaller than its stored copy")
		ok, err := env.Approve(fmt.Sprintf("%s is %d bytes but the stored copy is %d bytes. Push anyway?", path, len(payload), len(existing)))
		if err != nil {
			return fr, err
		}
		if !ok {
			fr.Status = StatusSkipped
			fr.Reason = "much smaller than the stored copy"
			return fr, nil
		}
	}

	if err := filesystem.WriteFileAtomic(env.Fs, target, []byte(payload), 0644); err != nil {
		return fr, err
	}
	logger.Debug().Str("path", path).Str("stored", rel).Msg("Stored file")
	fr.Status = StatusPushed
	return fr, nil
}
