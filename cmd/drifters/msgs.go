package drifters

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort          = "Keep application configs in sync across machines"
	MsgInitShort          = "Join this machine to a shared config repository"
	MsgAddShort           = "Define an app and the files it syncs"
	MsgPushShort          = "Publish this machine's config files"
	MsgPullShort          = "Apply the latest config files to this machine"
	MsgDiffShort          = "Preview what a pull would change"
	MsgStatusShort        = "Show the sync state of every file"
	MsgExcludeShort       = "Stop syncing a file on this machine"
	MsgListShort          = "List apps and machines"
	MsgExportShort        = "Write sync rules to a TOML or YAML file"
	MsgImportShort        = "Read sync rules from a TOML or YAML file"
	MsgEditRulesShort     = "Edit the shared sync rules in your editor"
	MsgRemoveAppShort     = "Remove stored copies of an app"
	MsgRenameAppShort     = "Rename an app"
	MsgRemoveMachineShort = "Unregister a machine and delete its copies"
	MsgRenameMachineShort = "Rename a machine"
	MsgUnlockShort        = "Remove a stale working copy lock"
	MsgHookShort          = "Output the shell startup hook"
	MsgVersionShort       = "Print version information"
	MsgCompletionShort    = "Generate shell completion script"

	// Status messages
	MsgInitialized       = "Initialized drifters on %s\n"
	MsgNewStore          = "Created a new store at %s\n"
	MsgJoinedStore       = "Joined the store at %s\n"
	MsgRejoined          = "Rejoined as an already registered machine.\n"
	MsgConfigWritten     = "Config written to %s\n"
	MsgAppAdded          = "Added app '%s'\n"
	MsgNothingToPush     = "Nothing to push."
	MsgPushedFormat      = "\nPushed %d file(s).\n"
	MsgNothingToPull     = "Everything is up to date."
	MsgAppliedFormat     = "\nApplied %d file(s).\n"
	MsgDryRunNotice      = "\nDRY RUN MODE - No changes were made"
	MsgNoDiff            = "No changes to pull."
	MsgNoApps            = "No apps defined. Add one with 'drifters add <app> --include <pattern>'."
	MsgExcluded          = "Excluded %s from %s on %s (pattern %s)\n"
	MsgAlreadyExcluded   = "%s is already excluded from %s on %s\n"
	MsgExported          = "Exported %d app(s) to %s\n"
	MsgImported          = "Imported %d app(s) (%d new, %d replaced)\n"
	MsgAppRemovedAll     = "Removed app '%s' from all machines\n"
	MsgAppRemovedMachine = "Removed stored copies of '%s' for %s\n"
	MsgNothingRemoved    = "Nothing to remove."
	MsgCancelled         = "Cancelled."
	MsgAppRenamed        = "Renamed app '%s' to '%s'\n"
	MsgMachineRemoved    = "Removed machine '%s' (%d dir(s), %d override(s))\n"
	MsgLocalConfigGone   = "Local config removed; run 'drifters init' to join again."
	MsgMachineRenamed    = "Renamed machine '%s' to '%s' (%d dir(s), %d override(s))\n"
	MsgLocalConfigMoved  = "Local config updated."
	MsgNoLock            = "No lock file found at %s\n"
	MsgLockInfo          = "Lock held by PID %d for %s\n"
	MsgLockRemoved       = "Lock removed."
	MsgWorkingCopyGone   = "Leftover working copy removed."
	MsgHookInstalled     = "Added the drifters hook to %s\n"
	MsgHookBackup        = "Previous version saved as %s\n"
	MsgHookPresent       = "%s already loads the drifters hook\n"
	MsgNotRegistered     = "Warning: this machine is not in the registry. Run 'drifters init --rejoin'."
	MsgNothingCommitted  = "No changes to commit."
	MsgOpeningRules      = "Opening %s (the store stays locked until the editor exits)\n"
	MsgRulesUnchanged    = "Sync rules unchanged."
	MsgRulesSaved        = "Saved the sync rules (%d app(s)) to the store.\n"
	MsgRulesDiscarded    = "Changes discarded."

	// Error messages
	MsgErrInitPaths = "failed to initialize paths: %w"
	MsgErrNoCommand = "no command specified"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagYes       = "Answer yes to every confirmation"
	MsgFlagMachineID = "ID of this machine (default: hostname)"
	MsgFlagRejoin    = "Reuse a machine ID that is already registered"
	MsgFlagForce     = "Overwrite an existing local config"
	MsgFlagInclude   = "Pattern of files to sync (repeatable)"
	MsgFlagExclude   = "Pattern of files to skip (repeatable)"
	MsgFlagMachine   = "Only consider copies from this machine"
	MsgFlagOS        = "Apply the patterns of another OS (macos, linux, windows)"
	MsgFlagDryRun    = "Preview changes without writing files"
	MsgFlagApp       = "Only this app"
	MsgFlagTarget    = "Remove the copies of another machine"
	MsgFlagAll       = "Remove the app and its copies from every machine"
	MsgFlagInstall   = "Add the hook to your shell rc file"
	MsgFlagShell     = "Shell to install the hook for (default: $SHELL)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/push-long.txt
	msgPushLongRaw string
	MsgPushLong    = strings.TrimSpace(msgPushLongRaw)

	//go:embed msgs/pull-long.txt
	msgPullLongRaw string
	MsgPullLong    = strings.TrimSpace(msgPullLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
