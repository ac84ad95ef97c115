// pkg/commands/pull/pull_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: testutil.Environment, FakeStore
// PURPOSE: Test merging stored copies into local files across machines

package pull_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/drifters/pkg/commands/addapp"
	"github.com/arthur-debert/drifters/pkg/commands/initialize"
	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/commands/pull"
	"github.com/arthur-debert/drifters/pkg/commands/push"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/merge"
	"github.com/arthur-debert/drifters/pkg/testutil"
	"github.com/arthur-debert/drifters/pkg/textdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fleet struct {
	e        *testutil.Environment
	machines map[string]*internal.Env
}

// newFleet joins the machines in order and defines a bash app syncing
// ~/.bashrc.
func newFleet(t *testing.T, ids ...string) *fleet {
	t.Helper()
	ctx := context.Background()
	f := &fleet{e: testutil.NewEnvironment(t), machines: make(map[string]*internal.Env)}
	for _, id := range ids {
		env := internal.NewTestEnv(t, f.e, id)
		_, err := initialize.Init(ctx, initialize.InitOptions{Env: env, RepoURL: f.e.Remote, MachineID: id})
		require.NoError(t, err)
		f.machines[id] = env
	}
	_, err := addapp.AddApp(ctx, addapp.AddAppOptions{Env: f.machines[ids[0]], Name: "bash", Include: []string{"~/.bashrc"}})
	require.NoError(t, err)
	return f
}

func (f *fleet) rc(id string) string {
	return filepath.Join(f.machines[id].Home(), ".bashrc")
}

func (f *fleet) write(id, content string) {
	f.e.WriteFile(f.rc(id), content)
}

func (f *fleet) push(t *testing.T, id string) {
	t.Helper()
	_, err := push.Push(context.Background(), push.PushOptions{Env: f.machines[id]})
	require.NoError(t, err)
}

func TestPull_BashrcScenario(t *testing.T) {
	f := newFleet(t, "laptop", "desktop", "server")

	f.write("laptop", "export PS1='laptop'\n")
	f.push(t, "laptop")
	f.write("desktop", "export PS1='desktop'\n")
	f.push(t, "desktop")

	result, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	assert.Equal(t, pull.ActionUpdate, change.Action)
	assert.Equal(t, "desktop", change.Source)
	assert.Equal(t, merge.DecisionNewest, change.Decision)
	assert.Equal(t, "export PS1='desktop'\n", f.e.ReadFile(f.rc("laptop")))

	// server never had the file; the literal include creates it
	result, err = pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["server"]})
	require.NoError(t, err)
	require.Len(t, result.Applied(), 1)
	assert.Equal(t, pull.ActionCreate, result.Changes[0].Action)
	assert.Equal(t, "export PS1='desktop'\n", f.e.ReadFile(f.rc("server")))
}

func TestPull_WritesThroughSymlink(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")

	// laptop keeps its real rc file in a dotfiles checkout
	real := filepath.Join(f.machines["laptop"].Home(), "dotfiles", "bashrc")
	f.e.WriteFile(real, "old\n")
	require.NoError(t, os.Symlink(real, f.rc("laptop")))
	f.push(t, "laptop")

	f.write("desktop", "new\n")
	f.push(t, "desktop")

	result, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)
	require.Len(t, result.Applied(), 1)

	info, err := os.Lstat(f.rc("laptop"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "~/.bashrc is still a link")
	assert.Equal(t, "new\n", f.e.ReadFile(real))
}

func TestPull_KeepsLocalExcludeSections(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")

	f.write("laptop", "alias a=1\n# drifters::exclude::start\nexport HOST=laptop\n# drifters::exclude::stop\n")
	f.push(t, "laptop")
	f.write("desktop", "alias a=2\n# drifters::exclude::start\nexport HOST=desktop\n# drifters::exclude::stop\n")
	f.push(t, "desktop")

	_, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)

	assert.Equal(t,
		"alias a=2\n# drifters::exclude::start\nexport HOST=laptop\n# drifters::exclude::stop\n",
		f.e.ReadFile(f.rc("laptop")))
}

func TestPull_DryRunWritesNothing(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")
	f.write("laptop", "old\n")
	f.push(t, "laptop")
	f.write("desktop", "new\n")
	f.push(t, "desktop")

	result, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"], DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	require.Len(t, result.Applied(), 1)
	assert.Equal(t, "new\n", result.Changes[0].After)
	assert.Equal(t, "old\n", f.e.ReadFile(f.rc("laptop")))
}

func TestPull_MachineFilter(t *testing.T) {
	f := newFleet(t, "laptop", "desktop", "server")
	f.write("laptop", "from laptop\n")
	f.push(t, "laptop")
	f.write("desktop", "from desktop\n")
	f.push(t, "desktop")

	_, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["server"], Machine: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, "from laptop\n", f.e.ReadFile(f.rc("server")))

	_, err = pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["server"], Machine: "ghost"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrMachineNotRegistered))
}

func TestPull_Declined(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")
	f.write("laptop", "old\n")
	f.push(t, "laptop")
	f.write("desktop", "new\n")
	f.push(t, "desktop")

	env := f.machines["laptop"]
	env.Confirm = func(string) (bool, error) { return false, nil }

	result, err := pull.Pull(context.Background(), pull.PullOptions{Env: env})
	require.NoError(t, err)
	assert.Equal(t, pull.ActionDeclined, result.Changes[0].Action)
	assert.Equal(t, "old\n", f.e.ReadFile(f.rc("laptop")))
}

func TestPull_UpToDateAndNoVersions(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")

	f.write("laptop", "same\n")
	result, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, pull.ActionNoVersions, result.Changes[0].Action)

	f.push(t, "laptop")
	result, err = pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)
	assert.Equal(t, pull.ActionUnchanged, result.Changes[0].Action)
	assert.Empty(t, result.Applied())
}

func TestPull_MalformedLocalAborts(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")
	f.write("desktop", "good\n")
	f.push(t, "desktop")
	f.write("laptop", "x\n# drifters::exclude::start\nunclosed\n")

	_, err := pull.Pull(context.Background(), pull.PullOptions{Env: f.machines["laptop"]})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedContent))
	assert.Equal(t, "x\n# drifters::exclude::start\nunclosed\n", f.e.ReadFile(f.rc("laptop")))
}

func TestDiff(t *testing.T) {
	f := newFleet(t, "laptop", "desktop")
	f.write("laptop", "a\nb\n")
	f.push(t, "laptop")
	f.write("desktop", "a\nc\n")
	f.push(t, "desktop")

	result, err := pull.Diff(context.Background(), pull.DiffOptions{Env: f.machines["laptop"]})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "desktop", result.Files[0].Source)
	assert.Equal(t, []string{" a", "-b", "+c"}, textdiff.Unified(result.Files[0].Lines, 3))
	assert.Equal(t, "a\nb\n", f.e.ReadFile(f.rc("laptop")))
}
