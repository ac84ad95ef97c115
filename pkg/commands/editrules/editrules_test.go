// pkg/commands/editrules/editrules_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: testutil.Environment, FakeStore
// PURPOSE: Test hand editing of the shared sync rules

package editrules_test

import (
	"context"
	"os"
	"testing"

	"github.com/arthur-debert/drifters/pkg/commands/addapp"
	"github.com/arthur-debert/drifters/pkg/commands/editrules"
	"github.com/arthur-debert/drifters/pkg/commands/initialize"
	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const editedRules = `[apps.bash]
include = ["~/.bashrc"]
exclude = []

[apps.git]
include = ["~/.gitconfig"]
exclude = []
`

// writeOnEdit returns an EditFunc that replaces the file with content and
// reports whether it ran.
func writeOnEdit(content string, called *bool) internal.EditFunc {
	return func(_ context.Context, path string) error {
		*called = true
		return os.WriteFile(path, []byte(content), 0644)
	}
}

func setup(t *testing.T) (*testutil.Environment, *internal.Env) {
	t.Helper()
	ctx := context.Background()
	e := testutil.NewEnvironment(t)
	env := internal.NewTestEnv(t, e, "laptop")
	_, err := initialize.Init(ctx, initialize.InitOptions{Env: env, RepoURL: e.Remote, MachineID: "laptop"})
	require.NoError(t, err)
	_, err = addapp.AddApp(ctx, addapp.AddAppOptions{Env: env, Name: "bash", Include: []string{"~/.bashrc"}})
	require.NoError(t, err)
	return e, env
}

func TestEditRules(t *testing.T) {
	tests := []struct {
		name        string
		yes         bool
		confirm     internal.ConfirmFunc
		wantSaved   bool
		wantInStore bool
	}{
		{"approved with --yes", true, nil, true, true},
		{"approved interactively", false, func(string) (bool, error) { return true, nil }, true, true},
		{"declined", false, func(string) (bool, error) { return false, nil }, false, false},
		{"no interactive user", false, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, env := setup(t)
			env.Yes = tt.yes
			env.Confirm = tt.confirm
			var called bool
			env.Edit = writeOnEdit(editedRules, &called)

			result, err := editrules.EditRules(context.Background(), editrules.EditRulesOptions{Env: env})
			require.NoError(t, err)
			assert.True(t, called)
			assert.True(t, result.Changed)
			assert.Equal(t, []string{"bash", "git"}, result.Apps)
			assert.Equal(t, tt.wantSaved, result.Saved)
			assert.Equal(t, tt.wantSaved, result.Committed)

			stored, ok := e.RemoteFile(".drifters/sync-rules.toml")
			require.True(t, ok)
			assert.Equal(t, tt.wantInStore, stored == editedRules)
			assert.Contains(t, stored, "[apps.bash]")
		})
	}
}

func TestEditRules_Unchanged(t *testing.T) {
	_, env := setup(t)
	env.Yes = true
	env.Edit = func(context.Context, string) error { return nil }

	result, err := editrules.EditRules(context.Background(), editrules.EditRulesOptions{Env: env})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.False(t, result.Committed)
}

func TestEditRules_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"broken toml", "[apps.bash\ninclude = [", errors.ErrConfigParse},
		{"bad app name", "[apps.\"a/b\"]\ninclude = [\"~/x\"]\n", errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, env := setup(t)
			env.Yes = true
			var called bool
			env.Edit = writeOnEdit(tt.content, &called)

			_, err := editrules.EditRules(context.Background(), editrules.EditRulesOptions{Env: env})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code))

			stored, ok := e.RemoteFile(".drifters/sync-rules.toml")
			require.True(t, ok)
			assert.Contains(t, stored, "[apps.bash]", "the store keeps the previous rules")
		})
	}
}

func TestEditRules_RequiresInit(t *testing.T) {
	e := testutil.NewEnvironment(t)
	env := internal.NewTestEnv(t, e, "laptop")

	_, err := editrules.EditRules(context.Background(), editrules.EditRulesOptions{Env: env})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInitialized))
}

func TestEditRules_EditorFailure(t *testing.T) {
	_, env := setup(t)
	env.Edit = func(context.Context, string) error {
		return errors.New(errors.ErrEditor, "editor exited with status 1")
	}

	_, err := editrules.EditRules(context.Background(), editrules.EditRulesOptions{Env: env})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEditor))
}
