// Package store is the durable transport behind drifters: a remote git
// repository reached through an ephemeral local checkout.
package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/arthur-debert/drifters/pkg/rules"
)

// Store is the backing store used by commands. dir is always the local
// checkout.
type Store interface {
	// Clone materializes the remote at url into dir.
	Clone(ctx context.Context, url, dir string) error
	// Init creates an empty checkout at dir whose remote is url.
	Init(ctx context.Context, dir, url string) error
	// Pull refreshes dir from its remote.
	Pull(ctx context.Context, dir string) error
	// CommitAndPush records every change in dir and publishes it. It
	// reports false when there was nothing to commit.
	CommitAndPush(ctx context.Context, dir, message string) (bool, error)
	// CommitTime returns the time of the last commit touching relPath, or
	// the zero time when the path has no history.
	CommitTime(ctx context.Context, dir, relPath string) (time.Time, error)
	// RemoteURL returns the URL of the checkout's remote.
	RemoteURL(ctx context.Context, dir string) (string, error)
}

// Layout computes paths inside a checkout.
//
//	<root>/.drifters/sync-rules.toml
//	<root>/.drifters/machines.toml
//	<root>/apps/<app>/machines/<machine>/<file>
type Layout struct {
	Root string
}

func (l Layout) RulesPath() string    { return filepath.Join(l.Root, filepath.FromSlash(rules.RulesFile)) }
func (l Layout) MachinesPath() string { return filepath.Join(l.Root, filepath.FromSlash(rules.MachinesFile)) }

func (l Layout) AppDir(app string) string {
	return filepath.Join(l.Root, "apps", app)
}

func (l Layout) MachinesDir(app string) string {
	return filepath.Join(l.AppDir(app), "machines")
}

func (l Layout) MachineDir(app, machine string) string {
	return filepath.Join(l.MachinesDir(app), machine)
}

// MachineFile is where machine keeps its copy of the local file localPath.
// Copies are stored flat by base name.
func (l Layout) MachineFile(app, machine, localPath string) string {
	return filepath.Join(l.MachineDir(app, machine), filepath.Base(localPath))
}

// Rel returns path relative to the checkout root with forward slashes.
func (l Layout) Rel(path string) (string, error) {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
