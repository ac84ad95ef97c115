package internal

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/drifters/pkg/paths"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/arthur-debert/drifters/pkg/testutil"
	"github.com/jonboulle/clockwork"
)

// TestEpoch is the fake clock start used by NewTestEnv.
var TestEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewTestEnv returns an uninitialized Env for machineID. Every machine gets
// its own home and config dir and shares e's remote and store. Run init
// before other commands.
func NewTestEnv(t *testing.T, e *testutil.Environment, machineID string) *Env {
	t.Helper()
	home, configDir := e.Machine(machineID)
	p := paths.NewWith(home, configDir, filepath.Join(e.Root, "state", machineID))

	env := NewEnv(nil, p, e.Store)
	env.OS = rules.OSLinux
	env.Clock = clockwork.NewFakeClockAt(TestEpoch)
	env.Notice = io.Discard
	return env
}
