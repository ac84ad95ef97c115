// Package editrules lets the user edit the shared sync rules by hand.
package editrules

import (
	"context"
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
)

// EditRulesOptions holds options for editing the sync rules
type EditRulesOptions struct {
	Env *internal.Env
}

// EditRulesResult describes what happened to the edited rules
type EditRulesResult struct {
	// Changed is false when the editor left the file as it was.
	Changed bool
	// Saved is false when the user discarded the changes.
	Saved     bool
	Apps      []string
	Committed bool
}

// EditRules opens the store's sync-rules.toml in the user's editor while
// the working copy lock is held. Edited rules are validated and, once the
// user approves, committed and published.
func EditRules(ctx context.Context, opts EditRulesOptions) (*EditRulesResult, error) {
	logger := logging.GetLogger("commands.edit-rules")
	defer logging.LogOperationStart(logger, "edit-rules")()

	env := opts.Env
	st, err := env.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	path := st.Layout.RulesPath()
	before, found, err := filesystem.ReadIfExists(env.Fs, path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.ErrFileNotFound, "the store has no %s", rules.RulesFile).
			WithDetail("path", path).
			WithHint("run 'drifters add' to define the first app")
	}

	if err := env.EditFile(ctx, path); err != nil {
		return nil, err
	}

	after, _, err := filesystem.ReadIfExists(env.Fs, path)
	if err != nil {
		return nil, err
	}
	result := &EditRulesResult{Changed: after != before}
	if !result.Changed {
		logger.Info().Msg("Sync rules unchanged")
		return result, nil
	}

	edited, err := validate(env, st.Layout.Root)
	if err != nil {
		return nil, err
	}
	result.Apps = edited.AppNames()

	ok, err := env.Approve(fmt.Sprintf("Save the edited sync rules (%d apps) to the store?", len(result.Apps)))
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Info().Msg("Edited sync rules discarded")
		return result, nil
	}

	result.Saved = true
	result.Committed, err = st.Commit(ctx, fmt.Sprintf("Edit sync rules from %s", env.MachineID()))
	if err != nil {
		return nil, err
	}

	logger.Info().Strs("apps", result.Apps).Bool("committed", result.Committed).Msg("Sync rules edited")
	return result, nil
}

// validate parses the edited rules so a broken file never reaches the
// store.
func validate(env *internal.Env, root string) (*rules.SyncRules, error) {
	edited, err := rules.LoadRules(env.Fs, root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "the edited sync rules are invalid").
			WithHint("run 'drifters edit-rules' again; the store was not changed")
	}
	for _, name := range edited.AppNames() {
		if err := rules.ValidateName("app", name); err != nil {
			return nil, err
		}
	}
	return edited, nil
}
