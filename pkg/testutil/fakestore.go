// pkg/testutil/fakestore.go
// DEPENDENCIES: afero OsFs
// PURPOSE: Copy-based store standing in for a git remote in command tests

package testutil

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/spf13/afero"
)

const (
	markerDir  = ".git"
	remoteFile = ".git/remote"
)

// FakeStore implements store.Store. A remote URL is a directory on disk;
// cloning copies it, committing mirrors the checkout back into it. Each
// commit advances a logical clock and stamps every changed path with it.
type FakeStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	tick int64

	// Times holds the commit time per checkout-relative path.
	Times map[string]time.Time
	// Messages lists commit messages in order.
	Messages []string

	CloneErr error
	PullErr  error
	PushErr  error
}

// NewFakeStore returns a store working on the real filesystem.
func NewFakeStore() *FakeStore {
	return &FakeStore{fs: afero.NewOsFs(), Times: make(map[string]time.Time)}
}

// SetTime pins the commit time of relPath.
func (f *FakeStore) SetTime(relPath string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Times[relPath] = t
}

func (f *FakeStore) Clone(_ context.Context, url, dir string) error {
	if f.CloneErr != nil {
		return f.CloneErr
	}
	if info, err := f.fs.Stat(url); err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrStoreClone, "failed to clone %s", url).WithDetail("remote", url)
	}
	if err := f.mirror(url, dir); err != nil {
		return errors.Wrapf(err, errors.ErrStoreClone, "failed to clone %s", url)
	}
	return f.writeRemote(dir, url)
}

func (f *FakeStore) Init(_ context.Context, dir, url string) error {
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return f.writeRemote(dir, url)
}

func (f *FakeStore) Pull(ctx context.Context, dir string) error {
	if f.PullErr != nil {
		return f.PullErr
	}
	url, err := f.RemoteURL(ctx, dir)
	if err != nil {
		return err
	}
	return f.mirror(url, dir)
}

func (f *FakeStore) CommitAndPush(ctx context.Context, dir, message string) (bool, error) {
	url, err := f.RemoteURL(ctx, dir)
	if err != nil {
		return false, err
	}

	changed, err := f.diff(dir, url)
	if err != nil {
		return false, err
	}
	if len(changed) == 0 {
		return false, nil
	}
	if f.PushErr != nil {
		return true, f.PushErr
	}

	f.mu.Lock()
	f.tick++
	now := time.Unix(1_700_000_000+f.tick, 0)
	for _, rel := range changed {
		f.Times[rel] = now
	}
	f.Messages = append(f.Messages, message)
	f.mu.Unlock()

	if err := f.fs.MkdirAll(url, 0755); err != nil {
		return true, err
	}
	return true, f.mirror(dir, url)
}

func (f *FakeStore) CommitTime(_ context.Context, _ string, relPath string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Times[relPath], nil
}

func (f *FakeStore) RemoteURL(_ context.Context, dir string) (string, error) {
	data, err := afero.ReadFile(f.fs, filepath.Join(dir, remoteFile))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrStorePull, "%s is not a checkout", dir)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FakeStore) writeRemote(dir, url string) error {
	if err := f.fs.MkdirAll(filepath.Join(dir, markerDir), 0755); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, filepath.Join(dir, remoteFile), []byte(url), 0644)
}

// mirror makes dst hold exactly the files of src, ignoring the marker dir.
func (f *FakeStore) mirror(src, dst string) error {
	srcFiles, err := f.files(src)
	if err != nil {
		return err
	}
	dstFiles, err := f.files(dst)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for rel := range dstFiles {
		if _, ok := srcFiles[rel]; !ok {
			if err := f.fs.Remove(filepath.Join(dst, rel)); err != nil {
				return err
			}
		}
	}
	for rel, content := range srcFiles {
		target := filepath.Join(dst, rel)
		if err := f.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(f.fs, target, content, 0644); err != nil {
			return err
		}
	}
	return nil
}

// diff returns the relative paths whose content differs between the two
// trees, including files only present in one of them.
func (f *FakeStore) diff(a, b string) ([]string, error) {
	aFiles, err := f.files(a)
	if err != nil {
		return nil, err
	}
	bFiles, err := f.files(b)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var changed []string
	for rel, content := range aFiles {
		if other, ok := bFiles[rel]; !ok || string(other) != string(content) {
			changed = append(changed, rel)
		}
	}
	for rel := range bFiles {
		if _, ok := aFiles[rel]; !ok {
			changed = append(changed, rel)
		}
	}
	return changed, nil
}

func (f *FakeStore) files(root string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if _, err := f.fs.Stat(root); err != nil {
		return out, err
	}
	err := afero.Walk(f.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == markerDir || strings.HasPrefix(rel, markerDir+"/") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		data, err := afero.ReadFile(f.fs, path)
		if err != nil {
			return err
		}
		out[rel] = data
		return nil
	})
	return out, err
}
