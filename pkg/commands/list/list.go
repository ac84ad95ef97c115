package list

import (
	"context"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// ListOptions holds options for listing the shared rules
type ListOptions struct {
	Env *internal.Env
}

// AppInfo is one app and the files it covers on this machine
type AppInfo struct {
	Name string
	App  *rules.AppDefinition
	// Files is the app's resolved fileset here.
	Files []string
}

// MachineInfo is one registered machine
type MachineInfo struct {
	ID      string
	Info    rules.MachineInfo
	Current bool
}

// ListResult holds the apps and machines of the store
type ListResult struct {
	Apps     []AppInfo
	Machines []MachineInfo
	// Registered is false when this machine is missing from the registry.
	Registered bool
}

// List returns every app with its patterns and overrides, and every
// registered machine.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	logger := logging.GetLogger("commands.list")
	defer logging.LogOperationStart(logger, "list")()

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result := &ListResult{Registered: st.Registered}
	resolver := env.Resolver()
	for _, name := range st.Rules.AppNames() {
		app := st.Rules.Apps[name]
		result.Apps = append(result.Apps, AppInfo{
			Name:  name,
			App:   app,
			Files: resolver.Resolve(app, env.MachineID(), env.OS),
		})
	}
	for _, id := range st.Machines.IDs() {
		result.Machines = append(result.Machines, MachineInfo{
			ID:      id,
			Info:    st.Machines.Machines[id],
			Current: id == env.MachineID(),
		})
	}
	return result, nil
}
