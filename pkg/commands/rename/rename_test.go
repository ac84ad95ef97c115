// pkg/commands/rename/rename_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: testutil.Environment, FakeStore
// PURPOSE: Test renaming apps and machines

package rename_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/drifters/pkg/commands/addapp"
	"github.com/arthur-debert/drifters/pkg/commands/exclude"
	"github.com/arthur-debert/drifters/pkg/commands/initialize"
	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/commands/push"
	"github.com/arthur-debert/drifters/pkg/commands/rename"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*testutil.Environment, *internal.Env) {
	t.Helper()
	ctx := context.Background()
	e := testutil.NewEnvironment(t)
	env := internal.NewTestEnv(t, e, "laptop")
	_, err := initialize.Init(ctx, initialize.InitOptions{Env: env, RepoURL: e.Remote, MachineID: "laptop"})
	require.NoError(t, err)
	_, err = addapp.AddApp(ctx, addapp.AddAppOptions{Env: env, Name: "bash", Include: []string{"~/.bashrc", "~/.inputrc"}})
	require.NoError(t, err)
	e.WriteFile(filepath.Join(env.Home(), ".bashrc"), "set -o vi\n")
	_, err = push.Push(ctx, push.PushOptions{Env: env})
	require.NoError(t, err)
	_, err = exclude.Exclude(ctx, exclude.ExcludeOptions{Env: env, App: "bash", Filename: ".inputrc"})
	require.NoError(t, err)
	return e, env
}

func TestRenameApp(t *testing.T) {
	e, env := setup(t)
	ctx := context.Background()

	_, err := rename.RenameApp(ctx, rename.RenameAppOptions{Env: env, OldName: "bash", NewName: "shell"})
	require.NoError(t, err)

	_, ok := e.RemoteFile("apps/shell/machines/laptop/.bashrc")
	assert.True(t, ok)
	_, ok = e.RemoteFile("apps/bash/machines/laptop/.bashrc")
	assert.False(t, ok)

	_, err = rename.RenameApp(ctx, rename.RenameAppOptions{Env: env, OldName: "bash", NewName: "x"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAppNotFound))
	_, err = rename.RenameApp(ctx, rename.RenameAppOptions{Env: env, OldName: "shell", NewName: "a/b"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenameMachine(t *testing.T) {
	e, env := setup(t)
	ctx := context.Background()
	env.Yes = true

	result, err := rename.RenameMachine(ctx, rename.RenameMachineOptions{Env: env, OldID: "laptop", NewID: "mbp"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DirsRenamed)
	assert.Equal(t, 1, result.OverridesRenamed)
	assert.True(t, result.LocalConfigUpdate)
	assert.Equal(t, "mbp", env.MachineID())

	_, ok := e.RemoteFile("apps/bash/machines/mbp/.bashrc")
	assert.True(t, ok)
	machines, _ := e.RemoteFile(".drifters/machines.toml")
	assert.Contains(t, machines, "mbp")
	assert.NotContains(t, machines, "laptop")

	loaded, err := config.Load(env.Paths.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, "mbp", loaded.MachineID)
}

func TestRenameMachine_Validation(t *testing.T) {
	_, env := setup(t)
	ctx := context.Background()
	env.Yes = true

	tests := []struct {
		name       string
		old, newID string
		code       errors.ErrorCode
	}{
		{"same", "laptop", "laptop", errors.ErrInvalidInput},
		{"empty", "laptop", "", errors.ErrInvalidInput},
		{"separator", "laptop", "a/b", errors.ErrInvalidInput},
		{"unknown", "ghost", "new", errors.ErrMachineNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rename.RenameMachine(ctx, rename.RenameMachineOptions{Env: env, OldID: tt.old, NewID: tt.newID})
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}
