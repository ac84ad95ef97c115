package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := NewEnvironment(t)
	s := env.Store

	dir := filepath.Join(env.Root, "checkout")
	require.NoError(t, s.Clone(ctx, env.Remote, dir))

	env.WriteFile(filepath.Join(dir, "apps/a/machines/m/f"), "one")
	committed, err := s.CommitAndPush(ctx, dir, "first")
	require.NoError(t, err)
	assert.True(t, committed)

	content, ok := env.RemoteFile("apps/a/machines/m/f")
	require.True(t, ok)
	assert.Equal(t, "one", content)

	ts, err := s.CommitTime(ctx, dir, "apps/a/machines/m/f")
	require.NoError(t, err)
	assert.False(t, ts.IsZero())

	committed, err = s.CommitAndPush(ctx, dir, "again")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, []string{"first"}, s.Messages)

	require.NoError(t, os.Remove(filepath.Join(dir, "apps/a/machines/m/f")))
	_, err = s.CommitAndPush(ctx, dir, "delete")
	require.NoError(t, err)
	_, ok = env.RemoteFile("apps/a/machines/m/f")
	assert.False(t, ok)
}

func TestFakeStore_CloneMissingRemote(t *testing.T) {
	env := NewEnvironment(t)
	err := env.Store.Clone(context.Background(), filepath.Join(env.Root, "nope"), filepath.Join(env.Root, "dst"))
	assert.Error(t, err)
}
