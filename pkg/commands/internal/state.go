package internal

import (
	"context"

	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/arthur-debert/drifters/pkg/store"
	"github.com/arthur-debert/drifters/pkg/workingcopy"
)

// State is an open working copy with the shared rules and registry loaded.
type State struct {
	Session  *workingcopy.Session
	Layout   store.Layout
	Rules    *rules.SyncRules
	Machines *rules.MachineRegistry
	// Registered is false when this machine's ID is missing from the
	// registry, for example after it was renamed from another machine.
	Registered bool
}

// Load opens the working copy of the configured store and reads the shared
// files. The caller must Close the state.
func (e *Env) Load(ctx context.Context) (*State, error) {
	if err := e.RequireConfig(); err != nil {
		return nil, err
	}

	session, err := e.OpenWorkingCopy(ctx, e.Config.RepoURL, false)
	if err != nil {
		return nil, err
	}

	st := &State{Session: session, Layout: session.Layout()}
	if st.Rules, err = rules.LoadRules(e.Fs, st.Layout.Root); err != nil {
		session.Close()
		return nil, err
	}
	if st.Machines, err = rules.LoadMachines(e.Fs, st.Layout.Root); err != nil {
		session.Close()
		return nil, err
	}

	st.Registered = st.Machines.Has(e.MachineID())
	if !st.Registered {
		logger := logging.GetLogger("commands")
		logger.Warn().
			Str("machine", e.MachineID()).
			Strs("registered", st.Machines.IDs()).
			Msg("This machine is not registered in the store; it may have been renamed or removed from another machine")
	}
	return st, nil
}

// Close removes the working copy and releases its lock.
func (s *State) Close() {
	s.Session.Close()
}

// SaveRules writes the sync rules into the working copy.
func (s *State) SaveRules(e *Env) error {
	return rules.SaveRules(e.Fs, s.Layout.Root, s.Rules)
}

// SaveMachines writes the machine registry into the working copy.
func (s *State) SaveMachines(e *Env) error {
	return rules.SaveMachines(e.Fs, s.Layout.Root, s.Machines)
}

// Commit records and publishes every change in the working copy.
func (s *State) Commit(ctx context.Context, message string) (bool, error) {
	return s.Session.Commit(ctx, message)
}
