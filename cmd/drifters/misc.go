package drifters

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/drifters/internal/version"
	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) newHookCmd() *cobra.Command {
	var (
		install bool
		shell   string
	)
	cmd := &cobra.Command{
		Use:     "hook",
		Short:   MsgHookShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Example: `  # Load the hook from your shell startup file
  eval "$(drifters hook)"

  # Or let drifters add that line for you
  drifters hook --install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !install {
				fmt.Fprint(cmd.OutOrStdout(), commands.HookScript())
				return nil
			}

			env, err := c.env(cmd)
			if err != nil {
				return err
			}
			if shell == "" {
				shell = os.Getenv("SHELL")
			}
			result, err := commands.InstallHook(commands.InstallHookOptions{Env: env, Shell: shell})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rc := tildify(env.Home(), result.RCFile)
			if result.AlreadyPresent {
				fmt.Fprintf(out, MsgHookPresent, rc)
				return nil
			}
			fmt.Fprintf(out, MsgHookInstalled, rc)
			if result.Backup != "" {
				fmt.Fprintf(out, MsgHookBackup, tildify(env.Home(), result.Backup))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, MsgFlagInstall)
	cmd.Flags().StringVar(&shell, "shell", "", MsgFlagShell)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "drifters version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

// CompletionShells lists the shells GenCompletion supports.
var CompletionShells = []string{"bash", "zsh", "fish", "powershell"}

// CompletionFile returns the conventional file name of the completion
// script for shell.
func CompletionFile(shell string) string {
	switch shell {
	case "zsh":
		return "_drifters"
	case "powershell":
		return "drifters.ps1"
	}
	return "drifters." + shell
}

// GenCompletion writes the completion script of root for shell to w.
func GenCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unknown shell %q (supported: %s)", shell, strings.Join(CompletionShells, ", "))
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             CompletionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := GenCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
			if err != nil {
				log.Error().Err(err).Str("shell", args[0]).Msg("Failed to generate completion")
			}
			return err
		},
	}
}
