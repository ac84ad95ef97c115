// Package lock serializes drifters processes around the shared working copy.
//
// The lock is a file next to the checkout created with O_EXCL. It holds the
// owner's PID and its modification time is the acquisition time. A lock
// older than the staleness threshold is treated as abandoned by a crashed
// process and reclaimed.
package lock

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/jonboulle/clockwork"
)

// Defaults used when Options leave a field unset.
const (
	DefaultStaleAfter   = 10 * time.Minute
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// State is the lifecycle position of a Lock.
type State int

const (
	Unlocked State = iota
	Acquiring
	Held
)

func (s State) String() string {
	switch s {
	case Acquiring:
		return "acquiring"
	case Held:
		return "held"
	}
	return "unlocked"
}

// Options tune a Lock.
type Options struct {
	StaleAfter   time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
	// Clock drives staleness checks and waiting. Defaults to the real clock.
	Clock clockwork.Clock
	// Notice receives the one-time waiting message. Nil discards it.
	Notice io.Writer
}

// Lock is a cross-process lock backed by a file.
type Lock struct {
	path string
	opts Options
	pid  int

	mu    sync.Mutex
	state State
}

// New creates an unlocked Lock at path.
func New(path string, opts Options) *Lock {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Notice == nil {
		opts.Notice = io.Discard
	}
	return &Lock{path: path, opts: opts, pid: os.Getpid()}
}

// PathFor returns the lock path guarding dir: the sibling "<dir>.lock".
func PathFor(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// State returns the current lifecycle state.
func (l *Lock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lock) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Acquire blocks until the lock is held, the timeout elapses or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	logger := logging.GetLogger("lock")

	if l.State() == Held {
		return errors.Newf(errors.ErrLockAcquire, "lock %s is already held by this process", l.path).
			WithDetail("path", l.path)
	}
	l.setState(Acquiring)

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		l.setState(Unlocked)
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create lock directory for %s", l.path)
	}

	clock := l.opts.Clock
	deadline := clock.Now().Add(l.opts.Timeout)
	noticed := false

	for {
		created, err := l.tryCreate()
		if err != nil {
			l.setState(Unlocked)
			return err
		}
		if created {
			l.setState(Held)
			logger.Debug().Str("path", l.path).Int("pid", l.pid).Msg("Lock acquired")
			return nil
		}

		if l.reclaimStale() {
			created, err = l.tryCreate()
			if err != nil {
				l.setState(Unlocked)
				return err
			}
			if created {
				l.setState(Held)
				logger.Info().Str("path", l.path).Msg("Reclaimed stale lock")
				return nil
			}
		}

		if !noticed {
			noticed = true
			holder := "unknown"
			if info, err := Inspect(l.path, clock); err == nil && info.PID > 0 {
				holder = strconv.Itoa(info.PID)
			}
			fmt.Fprintf(l.opts.Notice, "Waiting for another drifters process (pid %s) to finish...\n", holder)
		}

		if !clock.Now().Before(deadline) {
			l.setState(Unlocked)
			return errors.Newf(errors.ErrLockTimeout, "timed out after %s waiting for lock %s", l.opts.Timeout, l.path).
				WithDetail("path", l.path).
				WithHint(fmt.Sprintf("delete the lock file if you are sure no other process is running: run 'drifters unlock' or remove %s", l.path))
		}

		select {
		case <-ctx.Done():
			l.setState(Unlocked)
			return errors.Wrap(ctx.Err(), errors.ErrCancelled, "cancelled while waiting for lock")
		case <-clock.After(l.opts.PollInterval):
		}
	}
}

// Release removes the lock file. Failures are logged only.
func (l *Lock) Release() {
	if l.State() != Held {
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger := logging.GetLogger("lock")
		logger.Warn().Err(err).Str("path", l.path).Msg("Failed to remove lock file")
	}
	l.setState(Unlocked)
}

func (l *Lock) tryCreate() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrLockAcquire, "cannot create lock %s", l.path).
			WithDetail("path", l.path)
	}
	_, werr := fmt.Fprintf(f, "%d\n", l.pid)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(l.path)
		return false, errors.Wrapf(werr, errors.ErrLockAcquire, "cannot write lock %s", l.path).
			WithDetail("path", l.path)
	}
	// the mtime is the acquisition time, taken from the lock's clock
	now := l.opts.Clock.Now()
	_ = os.Chtimes(l.path, now, now)
	return true, nil
}

func (l *Lock) reclaimStale() bool {
	info, err := Inspect(l.path, l.opts.Clock)
	if err != nil || info.Age <= l.opts.StaleAfter {
		return false
	}
	logger := logging.GetLogger("lock")
	logger.Warn().
		Str("path", l.path).
		Int("pid", info.PID).
		Dur("age", info.Age).
		Msg("Removing stale lock")
	return removeIfUnchanged(l.path, info.AcquiredAt)
}

// removeIfUnchanged deletes the lock at path only while its mtime still
// equals acquiredAt. A peer that reclaimed the lock in the meantime has
// rewritten it, so its lock survives.
func removeIfUnchanged(path string, acquiredAt time.Time) bool {
	stat, err := os.Stat(path)
	if err != nil {
		// already gone counts as reclaimed
		return os.IsNotExist(err)
	}
	if !stat.ModTime().Equal(acquiredAt) {
		return false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false
	}
	return true
}

// Info describes an existing lock file.
type Info struct {
	PID        int
	AcquiredAt time.Time
	Age        time.Duration
}

// Inspect reads the lock at path. The PID is zero when the file does not
// hold a number. clock may be nil for the real clock.
func Inspect(path string, clock clockwork.Clock) (Info, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, errors.Newf(errors.ErrNotFound, "no lock at %s", path).WithDetail("path", path)
		}
		return Info{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat lock %s", path)
	}

	info := Info{AcquiredAt: stat.ModTime(), Age: clock.Since(stat.ModTime())}
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			info.PID = pid
		}
	}
	return info, nil
}

// ForceRemove deletes the lock at path regardless of its owner. It reports
// whether a lock existed.
func ForceRemove(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove lock %s", path).
		WithDetail("path", path)
}
