package unlock

import (
	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/lock"
	"github.com/arthur-debert/drifters/pkg/logging"
)

// UnlockOptions holds options for force-removing the working copy lock
type UnlockOptions struct {
	Env *internal.Env
}

// UnlockResult describes what was found and removed
type UnlockResult struct {
	LockFile string
	// Found is false when no lock file existed.
	Found bool
	Info  lock.Info
	// Removed is false when the user declined.
	Removed            bool
	WorkingCopyRemoved bool
}

// Unlock removes a lock file left behind by a crashed or interrupted run,
// together with the leftover working copy. Only use it when no other
// drifters process is running.
func Unlock(opts UnlockOptions) (*UnlockResult, error) {
	logger := logging.GetLogger("commands.unlock")
	env := opts.Env

	path := env.Paths.LockFile()
	result := &UnlockResult{LockFile: path}

	info, err := lock.Inspect(path, env.Clock)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			logger.Info().Str("path", path).Msg("No lock file found")
			return result, nil
		}
		return nil, err
	}
	result.Found = true
	result.Info = info

	ok, err := env.Approve("Remove the lock file? Only do this if no other drifters process is running.")
	if err != nil {
		return nil, err
	}
	if !ok {
		return result, nil
	}

	if _, err := lock.ForceRemove(path); err != nil {
		return nil, err
	}
	result.Removed = true
	logger.Warn().Str("path", path).Int("pid", info.PID).Dur("age", info.Age).Msg("Lock file removed")

	dir := env.Paths.WorkingCopyDir()
	if filesystem.Exists(env.Fs, dir) {
		if err := env.Fs.RemoveAll(dir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", dir)
		}
		result.WorkingCopyRemoved = true
	}
	return result, nil
}
