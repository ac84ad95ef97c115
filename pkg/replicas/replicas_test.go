// pkg/replicas/replicas_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test collection of per-machine file versions

package replicas_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/replicas"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	times map[string]time.Time
	fail  map[string]bool
	seen  []string
}

func (f *fakeTimer) CommitTime(_ context.Context, dir, relPath string) (time.Time, error) {
	f.seen = append(f.seen, relPath)
	if f.fail[relPath] {
		return time.Time{}, fmt.Errorf("git log failed")
	}
	return f.times[relPath], nil
}

func setupRepo(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/repo/apps/bash/machines/laptop/.bashrc":  "alias a\n",
		"/repo/apps/bash/machines/desktop/.bashrc": "alias b\n",
		"/repo/apps/bash/machines/server/.profile": "other\n",
		"/repo/apps/bash/machines/stray-file":      "ignored\n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func TestCollect(t *testing.T) {
	fs := setupRepo(t)
	timer := &fakeTimer{times: map[string]time.Time{
		"apps/bash/machines/laptop/.bashrc": time.Unix(10, 0),
	}}
	collector := replicas.NewCollector(fs, timer, "/repo")

	versions, err := collector.Collect(context.Background(), "/repo/apps/bash/machines", ".bashrc", "")
	require.NoError(t, err)

	require.Len(t, versions, 2)
	assert.Equal(t, "alias a\n", versions["laptop"].Content)
	assert.Equal(t, int64(10), versions["laptop"].Timestamp())
	assert.Equal(t, "alias b\n", versions["desktop"].Content)
	assert.Equal(t, int64(0), versions["desktop"].Timestamp(), "no history counts as zero")
	assert.ElementsMatch(t, []string{
		"apps/bash/machines/desktop/.bashrc",
		"apps/bash/machines/laptop/.bashrc",
	}, timer.seen)
}

func TestCollect_Filter(t *testing.T) {
	fs := setupRepo(t)
	collector := replicas.NewCollector(fs, &fakeTimer{}, "/repo")

	versions, err := collector.Collect(context.Background(), "/repo/apps/bash/machines", ".bashrc", "desktop")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Contains(t, versions, "desktop")
}

func TestCollect_MissingDirectory(t *testing.T) {
	collector := replicas.NewCollector(afero.NewMemMapFs(), &fakeTimer{}, "/repo")

	versions, err := collector.Collect(context.Background(), "/repo/apps/none/machines", ".bashrc", "")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestCollect_HistoryFailureIsZero(t *testing.T) {
	fs := setupRepo(t)
	timer := &fakeTimer{fail: map[string]bool{"apps/bash/machines/laptop/.bashrc": true}}
	collector := replicas.NewCollector(fs, timer, "/repo")

	versions, err := collector.Collect(context.Background(), "/repo/apps/bash/machines", ".bashrc", "")
	require.NoError(t, err)
	assert.True(t, versions["laptop"].CommittedAt.IsZero())
}

func TestCollect_Cancelled(t *testing.T) {
	fs := setupRepo(t)
	collector := replicas.NewCollector(fs, &fakeTimer{}, "/repo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collector.Collect(ctx, "/repo/apps/bash/machines", ".bashrc", "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}
