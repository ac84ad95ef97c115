// Package replicas reads every machine's pushed copy of a file out of the
// working copy, together with the time of the commit that last touched it.
package replicas

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/spf13/afero"
)

// MachineVersion is one machine's copy of one file. A zero CommittedAt means
// the copy has no history and counts as the oldest possible timestamp.
type MachineVersion struct {
	Content     string
	CommittedAt time.Time
}

// Timestamp returns the effective commit time in Unix seconds.
func (v MachineVersion) Timestamp() int64 {
	if v.CommittedAt.IsZero() {
		return 0
	}
	return v.CommittedAt.Unix()
}

// CommitTimer looks up the last commit touching relPath inside the checkout
// at dir. A path without history returns the zero time and no error.
type CommitTimer interface {
	CommitTime(ctx context.Context, dir, relPath string) (time.Time, error)
}

// Collector gathers machine versions from one working copy checkout.
type Collector struct {
	fs      afero.Fs
	timer   CommitTimer
	repoDir string
}

// NewCollector creates a collector reading through fs. Paths handed to the
// timer are relative to repoDir and use forward slashes.
func NewCollector(fs afero.Fs, timer CommitTimer, repoDir string) *Collector {
	return &Collector{fs: fs, timer: timer, repoDir: repoDir}
}

// Collect returns the copy of filename held by each machine directory under
// machinesDir. A non-empty filter restricts collection to that machine. A
// missing machinesDir yields an empty map.
func (c *Collector) Collect(ctx context.Context, machinesDir, filename, filter string) (map[string]MachineVersion, error) {
	logger := logging.GetLogger("replicas")
	versions := make(map[string]MachineVersion)

	entries, err := afero.ReadDir(c.fs, machinesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return versions, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", machinesDir).
			WithDetail("path", machinesDir)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		machine := entry.Name()
		if filter != "" && machine != filter {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "collection cancelled")
		}

		path := filepath.Join(machinesDir, machine, filename)
		info, err := c.fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).
				WithDetail("path", path)
		}
		if info.IsDir() {
			continue
		}

		content, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).
				WithDetail("path", path)
		}

		version := MachineVersion{Content: string(content)}
		if c.timer != nil {
			version.CommittedAt = c.commitTime(ctx, path)
		}
		versions[machine] = version

		logger.Trace().
			Str("machine", machine).
			Str("file", filename).
			Int64("timestamp", version.Timestamp()).
			Msg("Collected machine version")
	}

	return versions, nil
}

func (c *Collector) commitTime(ctx context.Context, path string) time.Time {
	logger := logging.GetLogger("replicas")

	rel, err := filepath.Rel(c.repoDir, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Path is outside the working copy, using no timestamp")
		return time.Time{}
	}

	committed, err := c.timer.CommitTime(ctx, c.repoDir, filepath.ToSlash(rel))
	if err != nil {
		logger.Warn().Err(err).Str("path", rel).Msg("Commit history lookup failed, using no timestamp")
		return time.Time{}
	}
	return committed
}
