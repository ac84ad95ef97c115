// Package internal holds the pieces every drifters command shares: the
// command environment, the locked working copy state and the pull planner.
package internal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/fileset"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/lock"
	"github.com/arthur-debert/drifters/pkg/paths"
	"github.com/arthur-debert/drifters/pkg/store"
	"github.com/arthur-debert/drifters/pkg/ui/editor"
	"github.com/arthur-debert/drifters/pkg/workingcopy"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(question string) (bool, error)

// EditFunc lets the user edit the file at path and returns once they are
// done.
type EditFunc func(ctx context.Context, path string) error

// Env is everything a command needs from the outside world.
type Env struct {
	// Config is nil until the machine has joined a store.
	Config *config.Config
	Paths  *paths.Paths
	Store  store.Store
	// Fs reads and writes local files and the working copy. The working copy
	// lives on disk, so commands that open one need an OS-backed Fs.
	Fs afero.Fs
	// OS selects the OS pattern tier.
	OS    string
	Clock clockwork.Clock
	// Notice receives lock waiting messages.
	Notice io.Writer
	// Confirm is asked before risky or destructive steps. Nil means no
	// interactive user.
	Confirm ConfirmFunc
	// Yes answers every confirmation with yes.
	Yes bool
	// Edit opens files for the user. Nil runs the configured editor.
	Edit EditFunc
}

// NewEnv returns an Env on the real filesystem and clock.
func NewEnv(cfg *config.Config, p *paths.Paths, st store.Store) *Env {
	return &Env{
		Config: cfg,
		Paths:  p,
		Store:  st,
		Fs:     filesystem.NewOS(),
		OS:     fileset.DetectOS(),
		Clock:  clockwork.NewRealClock(),
		Notice: os.Stderr,
	}
}

// RequireConfig fails with NOT_INITIALIZED when the machine has no config.
func (e *Env) RequireConfig() error {
	if e.Config == nil {
		return errors.New(errors.ErrNotInitialized, "drifters is not initialized on this machine").
			WithHint("run 'drifters init <repo-url>'")
	}
	return nil
}

// MachineID returns this machine's ID, or "" before init.
func (e *Env) MachineID() string {
	if e.Config == nil {
		return ""
	}
	return e.Config.MachineID
}

// Now returns the current time from the Env's clock.
func (e *Env) Now() time.Time {
	return e.Clock.Now()
}

// Home returns the home directory "~" expands to.
func (e *Env) Home() string {
	return e.Paths.Home()
}

// Resolver returns a fileset resolver for this machine.
func (e *Env) Resolver() *fileset.Resolver {
	return fileset.NewResolver(e.Fs, e.Home())
}

// LockOptions returns the working copy lock settings.
func (e *Env) LockOptions() lock.Options {
	var opts lock.Options
	if e.Config != nil {
		opts = e.Config.Lock.LockOptions()
	}
	opts.Clock = e.Clock
	opts.Notice = e.Notice
	return opts
}

// OpenWorkingCopy locks and materializes the working copy for repoURL.
func (e *Env) OpenWorkingCopy(ctx context.Context, repoURL string, initIfEmpty bool) (*workingcopy.Session, error) {
	dir := e.Paths.WorkingCopyDir()
	return workingcopy.Open(ctx, workingcopy.Options{
		Dir:         dir,
		RepoURL:     repoURL,
		Store:       e.Store,
		Lock:        lock.New(lock.PathFor(dir), e.LockOptions()),
		InitIfEmpty: initIfEmpty,
	})
}

// Approve asks before a risky step. Without an interactive user the answer
// is no unless Yes is set.
func (e *Env) Approve(question string) (bool, error) {
	if e.Yes {
		return true, nil
	}
	if e.Confirm == nil {
		return false, nil
	}
	return e.Confirm(question)
}

// Proceed asks before a routine step. Without an interactive user the
// answer is yes.
func (e *Env) Proceed(question string) (bool, error) {
	if e.Yes || e.Confirm == nil {
		return true, nil
	}
	return e.Confirm(question)
}

// EditFile hands path to the user's editor and waits for it to close.
func (e *Env) EditFile(ctx context.Context, path string) error {
	if e.Edit != nil {
		return e.Edit(ctx, path)
	}
	var preferred string
	if e.Config != nil {
		preferred = e.Config.PreferredEditor
	}
	return editor.New(preferred).Open(ctx, path)
}
