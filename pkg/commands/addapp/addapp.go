package addapp

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// AddAppOptions holds options for defining a new app
type AddAppOptions struct {
	Env     *internal.Env
	Name    string
	Include []string
	Exclude []string
}

// AddAppResult describes the new app
type AddAppResult struct {
	Name      string
	App       *rules.AppDefinition
	Committed bool
}

// AddApp defines a new app in the shared sync rules and publishes it.
// Defining an app that already exists is an error.
func AddApp(ctx context.Context, opts AddAppOptions) (*AddAppResult, error) {
	logger := logging.GetLogger("commands.addapp")
	defer logging.LogOperationStart(logger, "add")()

	if err := rules.ValidateName("app", opts.Name); err != nil {
		return nil, err
	}

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	app := &rules.AppDefinition{
		Include: append([]string(nil), opts.Include...),
		Exclude: append([]string(nil), opts.Exclude...),
	}
	if err := st.Rules.AddApp(opts.Name, app); err != nil {
		return nil, err
	}
	if err := st.SaveRules(env); err != nil {
		return nil, err
	}

	committed, err := st.Commit(ctx, fmt.Sprintf("Add %s app from %s", opts.Name, env.MachineID()))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("app", opts.Name).
		Strs("include", app.Include).
		Strs("exclude", app.Exclude).
		Msg("App added")

	return &AddAppResult{Name: opts.Name, App: app, Committed: committed}, nil
}
