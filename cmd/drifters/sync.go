package drifters

import (
	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func optionalApp(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (c *cli) newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "push [app]",
		Short:             MsgPushShort,
		Long:              MsgPushLong,
		GroupID:           "sync",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.appNamesCompletion,
		Example: `  # Push every app
  drifters push

  # Push one app
  drifters push bash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			log.Info().Str("app", optionalApp(args)).Msg("Pushing")

			result, err := commands.Push(cmd.Context(), commands.PushOptions{
				Env: env,
				App: optionalApp(args),
			})
			if err != nil {
				return err
			}
			renderPush(cmd.OutOrStdout(), env.Home(), result)
			return nil
		},
	}
}

func (c *cli) newPullCmd() *cobra.Command {
	var (
		machine string
		osName  string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:               "pull [app]",
		Short:             MsgPullShort,
		Long:              MsgPullLong,
		GroupID:           "sync",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.appNamesCompletion,
		Example: `  # Pull every app
  drifters pull

  # Take the zsh configs of the laptop only
  drifters pull zsh --machine laptop

  # Preview without writing
  drifters pull --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Pull(cmd.Context(), commands.PullOptions{
				Env:     env,
				App:     optionalApp(args),
				Machine: machine,
				OS:      osName,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}
			renderPull(cmd.OutOrStdout(), env.Home(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&machine, "machine", "m", "", MsgFlagMachine)
	cmd.Flags().StringVar(&osName, "os", "", MsgFlagOS)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func (c *cli) newDiffCmd() *cobra.Command {
	var machine string
	cmd := &cobra.Command{
		Use:               "diff [app]",
		Short:             MsgDiffShort,
		GroupID:           "sync",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.appNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Diff(cmd.Context(), commands.DiffOptions{
				Env:     env,
				App:     optionalApp(args),
				Machine: machine,
			})
			if err != nil {
				return err
			}
			renderDiff(cmd.OutOrStdout(), env.Home(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&machine, "machine", "m", "", MsgFlagMachine)
	return cmd
}

func (c *cli) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "status [app]",
		Short:             MsgStatusShort,
		Long:              MsgStatusLong,
		GroupID:           "sync",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.appNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Status(cmd.Context(), commands.StatusOptions{
				Env: env,
				App: optionalApp(args),
			})
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), env.Home(), result)
			return nil
		},
	}
}
