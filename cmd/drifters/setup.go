package drifters

import (
	"fmt"

	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/arthur-debert/drifters/pkg/config"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/arthur-debert/drifters/pkg/style"
	"github.com/spf13/cobra"
)

func (c *cli) newInitCmd() *cobra.Command {
	var (
		machineID string
		rejoin    bool
		force     bool
	)
	cmd := &cobra.Command{
		Use:     "init <repo-url>",
		Short:   MsgInitShort,
		GroupID: "setup",
		Args:    cobra.ExactArgs(1),
		Example: `  # Join (or create) a store
  drifters init git@github.com:me/configs.git

  # Pick the machine ID explicitly
  drifters init git@github.com:me/configs.git --machine-id work-laptop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			if machineID == "" {
				machineID = config.DetectMachineID()
			}
			result, err := commands.Init(cmd.Context(), commands.InitOptions{
				Env:       env,
				RepoURL:   args[0],
				MachineID: machineID,
				Rejoin:    rejoin,
				Force:     force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgInitialized, style.AppStyle.Render(result.MachineID))
			if result.NewStore {
				fmt.Fprintf(out, MsgNewStore, result.RepoURL)
			} else {
				fmt.Fprintf(out, MsgJoinedStore, result.RepoURL)
			}
			if result.Rejoined {
				fmt.Fprint(out, MsgRejoined)
			}
			fmt.Fprintf(out, MsgConfigWritten, style.PathStyle.Render(tildify(env.Home(), result.ConfigFile)))
			return nil
		},
	}
	cmd.Flags().StringVar(&machineID, "machine-id", "", MsgFlagMachineID)
	cmd.Flags().BoolVar(&rejoin, "rejoin", false, MsgFlagRejoin)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func (c *cli) newAddCmd() *cobra.Command {
	var include, exclude []string
	cmd := &cobra.Command{
		Use:     "add <app>",
		Short:   MsgAddShort,
		GroupID: "setup",
		Args:    cobra.ExactArgs(1),
		Example: `  # Sync the nvim config directory but not its plugin lock
  drifters add nvim --include '~/.config/nvim/**/*.lua' --exclude '**/lazy-lock.json'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.AddApp(cmd.Context(), commands.AddAppOptions{
				Env:     env,
				Name:    args[0],
				Include: include,
				Exclude: exclude,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgAppAdded, style.AppStyle.Render(result.Name))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&include, "include", "i", nil, MsgFlagInclude)
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "e", nil, MsgFlagExclude)
	_ = cmd.MarkFlagRequired("include")
	return cmd
}

func (c *cli) newExcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "exclude <app> <filename>",
		Short:             MsgExcludeShort,
		GroupID:           "setup",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.appNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Exclude(cmd.Context(), commands.ExcludeOptions{
				Env:      env,
				App:      args[0],
				Filename: args[1],
			})
			if err != nil {
				return err
			}
			if result.AlreadyExcluded {
				fmt.Fprintf(cmd.OutOrStdout(), MsgAlreadyExcluded, args[1], result.App, result.Machine)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgExcluded, args[1], result.App, result.Machine, result.Pattern)
			return nil
		},
	}
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.List(cmd.Context(), commands.ListOptions{Env: env})
			if err != nil {
				return err
			}
			renderList(cmd.OutOrStdout(), env.Home(), result)
			return nil
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	var app string
	cmd := &cobra.Command{
		Use:     "export <file>",
		Short:   MsgExportShort,
		GroupID: "setup",
		Args:    cobra.ExactArgs(1),
		Example: `  # Back up every rule as YAML
  drifters export rules.yaml

  # Share one app definition
  drifters export nvim.toml --app nvim`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Export(cmd.Context(), commands.ExportOptions{
				Env:  env,
				Path: args[0],
				App:  app,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgExported, len(result.Apps), style.PathStyle.Render(result.Path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&app, "app", "a", "", MsgFlagApp)
	return cmd
}

func (c *cli) newImportCmd() *cobra.Command {
	var app string
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   MsgImportShort,
		GroupID: "setup",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Import(cmd.Context(), commands.ImportOptions{
				Env:  env,
				Path: args[0],
				App:  app,
			})
			if err != nil {
				return err
			}
			added, replaced := len(result.Added), len(result.Replaced)
			fmt.Fprintf(cmd.OutOrStdout(), MsgImported, added+replaced, added, replaced)
			return nil
		},
	}
	cmd.Flags().StringVarP(&app, "app", "a", "", MsgFlagApp)
	return cmd
}

func (c *cli) newEditRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "edit-rules",
		Short:   MsgEditRulesShort,
		GroupID: "setup",
		Args:    cobra.NoArgs,
		Example: `  # Edit with the configured editor, $VISUAL or $EDITOR
  drifters edit-rules

  # Pick an editor for this run
  DRIFTERS_PREFERRED_EDITOR="code --wait" drifters edit-rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgOpeningRules, rules.RulesFile)

			result, err := commands.EditRules(cmd.Context(), commands.EditRulesOptions{Env: env})
			if err != nil {
				return err
			}
			switch {
			case !result.Changed:
				fmt.Fprintln(out, MsgRulesUnchanged)
			case !result.Saved:
				fmt.Fprintln(out, MsgRulesDiscarded)
			default:
				fmt.Fprintf(out, MsgRulesSaved, len(result.Apps))
			}
			return nil
		},
	}
}
