package drifters

import (
	"fmt"
	"os"

	"github.com/arthur-debert/drifters/internal/version"
	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/paths"
	"github.com/arthur-debert/drifters/pkg/store"
	"github.com/arthur-debert/drifters/pkg/ui/confirmations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// deps are the outside-world pieces the CLI is built on.
type deps struct {
	paths   func() (*paths.Paths, error)
	store   func() store.Store
	confirm commands.ConfirmFunc
	// edit replaces the configured editor when set.
	edit commands.EditFunc
	// os overrides OS detection when set.
	os string
}

func defaultDeps() deps {
	d := deps{
		paths: paths.New,
		store: func() store.Store { return store.NewGitStore() },
	}
	if isTerminal(os.Stdin) {
		d.confirm = confirmations.NewConsoleDialog().Confirm
	}
	return d
}

// cli holds the global flags shared by every subcommand.
type cli struct {
	deps      deps
	verbosity int
	yes       bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	c := &cli{deps: d}

	rootCmd := &cobra.Command{
		Use:     "drifters",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile := ""
			if p, err := c.deps.paths(); err == nil {
				logFile = p.LogFile()
			}
			logging.SetupLogger(c.verbosity, logFile)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, MsgFlagYes)

	rootCmd.AddGroup(&cobra.Group{ID: "sync", Title: "SYNC:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "SETUP:"})
	rootCmd.AddGroup(&cobra.Group{ID: "maintenance", Title: "MAINTENANCE:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(c.newPushCmd())
	rootCmd.AddCommand(c.newPullCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newStatusCmd())

	rootCmd.AddCommand(c.newInitCmd())
	rootCmd.AddCommand(c.newAddCmd())
	rootCmd.AddCommand(c.newExcludeCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newExportCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newEditRulesCmd())

	rootCmd.AddCommand(c.newRemoveAppCmd())
	rootCmd.AddCommand(c.newRenameAppCmd())
	rootCmd.AddCommand(c.newRemoveMachineCmd())
	rootCmd.AddCommand(c.newRenameMachineCmd())
	rootCmd.AddCommand(c.newUnlockCmd())

	rootCmd.AddCommand(c.newHookCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// env builds the command environment. A machine that has not joined a
// store yet gets an Env without config; commands that need one fail with a
// hint to run init.
func (c *cli) env(cmd *cobra.Command) (*commands.Env, error) {
	p, err := c.deps.paths()
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	cfg, err := config.Load(p.ConfigFile())
	if err != nil && !errors.IsErrorCode(err, errors.ErrNotInitialized) {
		return nil, err
	}

	env := commands.NewEnv(cfg, p, c.deps.store())
	env.Notice = cmd.ErrOrStderr()
	env.Confirm = c.deps.confirm
	env.Yes = c.yes
	env.Edit = c.deps.edit
	if c.deps.os != "" {
		env.OS = c.deps.os
	}
	return env, nil
}

// appNamesCompletion provides shell completion for app names
func (c *cli) appNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	env, err := c.env(cmd)
	if err != nil || env.Config == nil {
		return nil, cobra.ShellCompDirectiveError
	}
	result, err := commands.List(cmd.Context(), commands.ListOptions{Env: env})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(result.Apps))
	for _, app := range result.Apps {
		names = append(names, app.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
