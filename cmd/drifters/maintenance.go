package drifters

import (
	"fmt"
	"time"

	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/arthur-debert/drifters/pkg/style"
	"github.com/spf13/cobra"
)

func (c *cli) newRemoveAppCmd() *cobra.Command {
	var (
		machine string
		all     bool
	)
	cmd := &cobra.Command{
		Use:               "remove-app <app>",
		Short:             MsgRemoveAppShort,
		GroupID:           "maintenance",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.appNamesCompletion,
		Example: `  # Stop storing this machine's copies of an app
  drifters remove-app nvim

  # Delete the app everywhere
  drifters remove-app nvim --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.RemoveApp(cmd.Context(), commands.RemoveAppOptions{
				Env:     env,
				Name:    args[0],
				Machine: machine,
				All:     all,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Cancelled:
				fmt.Fprintln(out, MsgCancelled)
			case !result.Deleted:
				fmt.Fprintln(out, MsgNothingRemoved)
			case result.All:
				fmt.Fprintf(out, MsgAppRemovedAll, style.AppStyle.Render(result.Name))
			default:
				fmt.Fprintf(out, MsgAppRemovedMachine, style.AppStyle.Render(result.Name), result.Machine)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&machine, "machine", "m", "", MsgFlagTarget)
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.MarkFlagsMutuallyExclusive("machine", "all")
	return cmd
}

func (c *cli) newRenameAppCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rename-app <old> <new>",
		Short:             MsgRenameAppShort,
		GroupID:           "maintenance",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.appNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.RenameApp(cmd.Context(), commands.RenameAppOptions{
				Env:     env,
				OldName: args[0],
				NewName: args[1],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgAppRenamed, result.OldName, style.AppStyle.Render(result.NewName))
			return nil
		},
	}
}

func (c *cli) newRemoveMachineCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove-machine <id>",
		Short:   MsgRemoveMachineShort,
		GroupID: "maintenance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.RemoveMachine(cmd.Context(), commands.RemoveMachineOptions{
				Env: env,
				ID:  args[0],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Cancelled {
				fmt.Fprintln(out, MsgCancelled)
				return nil
			}
			fmt.Fprintf(out, MsgMachineRemoved, result.ID, result.DirsRemoved, result.OverridesRemoved)
			if result.LocalConfigRemoved {
				fmt.Fprintln(out, MsgLocalConfigGone)
			}
			return nil
		},
	}
}

func (c *cli) newRenameMachineCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rename-machine <old> <new>",
		Short:   MsgRenameMachineShort,
		GroupID: "maintenance",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.RenameMachine(cmd.Context(), commands.RenameMachineOptions{
				Env:   env,
				OldID: args[0],
				NewID: args[1],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Cancelled {
				fmt.Fprintln(out, MsgCancelled)
				return nil
			}
			fmt.Fprintf(out, MsgMachineRenamed, result.OldID, result.NewID, result.DirsRenamed, result.OverridesRenamed)
			if result.LocalConfigUpdate {
				fmt.Fprintln(out, MsgLocalConfigMoved)
			}
			return nil
		},
	}
}

func (c *cli) newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unlock",
		Short:   MsgUnlockShort,
		GroupID: "maintenance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			result, err := commands.Unlock(commands.UnlockOptions{Env: env})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Found {
				fmt.Fprintf(out, MsgNoLock, tildify(env.Home(), result.LockFile))
				return nil
			}
			fmt.Fprintf(out, MsgLockInfo, result.Info.PID, result.Info.Age.Round(time.Second))
			if !result.Removed {
				fmt.Fprintln(out, MsgCancelled)
				return nil
			}
			fmt.Fprintln(out, style.SuccessStyle.Render(MsgLockRemoved))
			if result.WorkingCopyRemoved {
				fmt.Fprintln(out, MsgWorkingCopyGone)
			}
			return nil
		},
	}
}
