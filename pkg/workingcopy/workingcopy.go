// Package workingcopy manages the single ephemeral checkout every command
// works through. A Session holds the working copy lock from before the
// checkout is materialized until after it is removed.
package workingcopy

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/lock"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/store"
)

// Locker is the part of lock.Lock a session needs.
type Locker interface {
	Acquire(ctx context.Context) error
	Release()
}

// Options configure Open.
type Options struct {
	// Dir is the checkout location.
	Dir string
	// RepoURL is cloned when Dir holds no checkout.
	RepoURL string
	Store   store.Store
	// Lock guards Dir. Defaults to a lock at lock.PathFor(Dir).
	Lock Locker
	// InitIfEmpty creates a fresh repository pointing at RepoURL when the
	// clone fails. Used when joining a store that does not exist yet.
	InitIfEmpty bool
}

// Session is an open, locked checkout.
type Session struct {
	dir    string
	store  store.Store
	lock   Locker
	fresh  bool
	closed bool
}

// Open acquires the lock and materializes the checkout, pulling when a
// leftover checkout exists and cloning otherwise. On failure the lock is
// released before returning.
func Open(ctx context.Context, opts Options) (*Session, error) {
	logger := logging.GetLogger("workingcopy")

	l := opts.Lock
	if l == nil {
		l = lock.New(lock.PathFor(opts.Dir), lock.Options{})
	}
	if err := l.Acquire(ctx); err != nil {
		return nil, err
	}

	s := &Session{dir: opts.Dir, store: opts.Store, lock: l}
	if err := s.materialize(ctx, opts); err != nil {
		logger.Debug().Err(err).Msg("Checkout failed, releasing lock")
		s.removeCheckout()
		l.Release()
		return nil, err
	}
	return s, nil
}

func (s *Session) materialize(ctx context.Context, opts Options) error {
	logger := logging.GetLogger("workingcopy")

	if _, err := os.Stat(filepath.Join(s.dir, ".git")); err == nil {
		logger.Debug().Str("dir", s.dir).Msg("Working copy exists, pulling latest")
		err := s.store.Pull(ctx, s.dir)
		if err == nil {
			return nil
		}
		logger.Warn().Err(err).Msg("Pull of leftover working copy failed, cloning fresh")
		if err := os.RemoveAll(s.dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove stale working copy %s", s.dir)
		}
	} else if _, err := os.Stat(s.dir); err == nil {
		if err := os.RemoveAll(s.dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove stale working copy %s", s.dir)
		}
	}

	logger.Debug().Str("dir", s.dir).Str("remote", opts.RepoURL).Msg("Cloning working copy")
	err := s.store.Clone(ctx, opts.RepoURL, s.dir)
	if err == nil {
		return nil
	}
	if !opts.InitIfEmpty {
		return err
	}

	logger.Info().Err(err).Str("remote", opts.RepoURL).Msg("Clone failed, initializing a new repository")
	_ = os.RemoveAll(s.dir)
	s.fresh = true
	return s.store.Init(ctx, s.dir, opts.RepoURL)
}

// Dir returns the checkout root.
func (s *Session) Dir() string { return s.dir }

// Layout returns path helpers rooted at the checkout.
func (s *Session) Layout() store.Layout { return store.Layout{Root: s.dir} }

// Fresh reports whether the checkout was created by Init instead of a clone.
func (s *Session) Fresh() bool { return s.fresh }

// Commit records and publishes every change in the checkout.
func (s *Session) Commit(ctx context.Context, message string) (bool, error) {
	return s.store.CommitAndPush(ctx, s.dir, message)
}

// Close removes the checkout and then releases the lock. Failures are
// logged only. Close is safe to call more than once.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.removeCheckout()
	s.lock.Release()
}

func (s *Session) removeCheckout() {
	if err := os.RemoveAll(s.dir); err != nil {
		logger := logging.GetLogger("workingcopy")
		logger.Warn().Err(err).Str("dir", s.dir).Msg("Failed to remove working copy")
	}
}
