// Package commands provides the high-level drifters commands.
//
// Each command is implemented in its own subdirectory:
//   - initialize/ - Init joins this machine to a store
//   - addapp/     - AddApp defines a new app
//   - push/       - Push publishes this machine's files
//   - pull/       - Pull applies the agreed versions; Diff previews them
//   - status/     - Status reports per-file sync state
//   - exclude/    - Exclude stops syncing a file on this machine
//   - list/       - List shows apps and machines
//   - transfer/   - Export and Import move rules to and from local files
//   - editrules/  - EditRules opens the sync rules in an editor
//   - remove/     - RemoveApp and RemoveMachine
//   - rename/     - RenameApp and RenameMachine
//   - unlock/     - Unlock removes a stale working copy lock
//   - hook/       - the shell startup hook
//   - internal/   - the command environment and the pull planner
//
// This file re-exports the command functions so callers only import this
// package.
package commands

import (
	"context"

	"github.com/arthur-debert/drifters/pkg/commands/addapp"
	"github.com/arthur-debert/drifters/pkg/commands/editrules"
	"github.com/arthur-debert/drifters/pkg/commands/exclude"
	"github.com/arthur-debert/drifters/pkg/commands/hook"
	"github.com/arthur-debert/drifters/pkg/commands/initialize"
	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/commands/list"
	"github.com/arthur-debert/drifters/pkg/commands/pull"
	"github.com/arthur-debert/drifters/pkg/commands/push"
	"github.com/arthur-debert/drifters/pkg/commands/remove"
	"github.com/arthur-debert/drifters/pkg/commands/rename"
	"github.com/arthur-debert/drifters/pkg/commands/status"
	"github.com/arthur-debert/drifters/pkg/commands/transfer"
	"github.com/arthur-debert/drifters/pkg/commands/unlock"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/paths"
	"github.com/arthur-debert/drifters/pkg/store"
)

// Env is the environment every command runs in.
type Env = internal.Env

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc = internal.ConfirmFunc

// EditFunc lets the user edit a file.
type EditFunc = internal.EditFunc

// NewEnv returns an Env on the real filesystem and clock.
func NewEnv(cfg *config.Config, p *paths.Paths, st store.Store) *Env {
	return internal.NewEnv(cfg, p, st)
}

// Init joins this machine to a store.
type InitOptions = initialize.InitOptions
type InitResult = initialize.InitResult

func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	return initialize.Init(ctx, opts)
}

// AddApp defines a new app in the shared rules.
type AddAppOptions = addapp.AddAppOptions
type AddAppResult = addapp.AddAppResult

func AddApp(ctx context.Context, opts AddAppOptions) (*AddAppResult, error) {
	return addapp.AddApp(ctx, opts)
}

// Push publishes this machine's copies.
type PushOptions = push.PushOptions
type PushResult = push.PushResult

func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	return push.Push(ctx, opts)
}

// Pull applies the agreed versions locally.
type PullOptions = pull.PullOptions
type PullResult = pull.PullResult

func Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	return pull.Pull(ctx, opts)
}

// Diff previews a pull.
type DiffOptions = pull.DiffOptions
type DiffResult = pull.DiffResult

func Diff(ctx context.Context, opts DiffOptions) (*DiffResult, error) {
	return pull.Diff(ctx, opts)
}

// Status reports the sync state of every file.
type StatusOptions = status.StatusOptions
type StatusResult = status.StatusResult

func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	return status.Status(ctx, opts)
}

// Exclude stops syncing a file on this machine.
type ExcludeOptions = exclude.ExcludeOptions
type ExcludeResult = exclude.ExcludeResult

func Exclude(ctx context.Context, opts ExcludeOptions) (*ExcludeResult, error) {
	return exclude.Exclude(ctx, opts)
}

// List shows apps and machines.
type ListOptions = list.ListOptions
type ListResult = list.ListResult

func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	return list.List(ctx, opts)
}

// Export writes rules to a local file.
type ExportOptions = transfer.ExportOptions
type ExportResult = transfer.ExportResult

func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	return transfer.Export(ctx, opts)
}

// Import reads rules from a local file into the store.
type ImportOptions = transfer.ImportOptions
type ImportResult = transfer.ImportResult

func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	return transfer.Import(ctx, opts)
}

// EditRules opens the shared sync rules in the user's editor.
type EditRulesOptions = editrules.EditRulesOptions
type EditRulesResult = editrules.EditRulesResult

func EditRules(ctx context.Context, opts EditRulesOptions) (*EditRulesResult, error) {
	return editrules.EditRules(ctx, opts)
}

// RemoveApp deletes stored copies of an app.
type RemoveAppOptions = remove.RemoveAppOptions
type RemoveAppResult = remove.RemoveAppResult

func RemoveApp(ctx context.Context, opts RemoveAppOptions) (*RemoveAppResult, error) {
	return remove.RemoveApp(ctx, opts)
}

// RemoveMachine unregisters a machine.
type RemoveMachineOptions = remove.RemoveMachineOptions
type RemoveMachineResult = remove.RemoveMachineResult

func RemoveMachine(ctx context.Context, opts RemoveMachineOptions) (*RemoveMachineResult, error) {
	return remove.RemoveMachine(ctx, opts)
}

// RenameApp renames an app.
type RenameAppOptions = rename.RenameAppOptions
type RenameAppResult = rename.RenameAppResult

func RenameApp(ctx context.Context, opts RenameAppOptions) (*RenameAppResult, error) {
	return rename.RenameApp(ctx, opts)
}

// RenameMachine renames a machine.
type RenameMachineOptions = rename.RenameMachineOptions
type RenameMachineResult = rename.RenameMachineResult

func RenameMachine(ctx context.Context, opts RenameMachineOptions) (*RenameMachineResult, error) {
	return rename.RenameMachine(ctx, opts)
}

// Unlock removes a stale working copy lock.
type UnlockOptions = unlock.UnlockOptions
type UnlockResult = unlock.UnlockResult

func Unlock(opts UnlockOptions) (*UnlockResult, error) {
	return unlock.Unlock(opts)
}

// InstallHook adds the shell hook to the user's rc file.
type InstallHookOptions = hook.InstallOptions
type InstallHookResult = hook.InstallResult

func InstallHook(opts InstallHookOptions) (*InstallHookResult, error) {
	return hook.Install(opts)
}

// HookScript returns the shell snippet printed by 'drifters hook'.
func HookScript() string {
	return hook.Script()
}
