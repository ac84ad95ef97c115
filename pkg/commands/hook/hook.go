// Package hook provides the shell snippet that keeps a machine in sync on
// shell startup, and installs it into the user's rc file.
package hook

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/spf13/afero"
)

// EvalLine is the rc file line that loads the hook.
const EvalLine = `eval "$(drifters hook)"`

const marker = "drifters hook"

// Script returns shell code that runs a pull in the background, to be
// evaluated by the shell on startup.
func Script() string {
	return `# drifters auto-sync hook
# Pulls the agreed configs in the background when a shell starts.

drifters_auto_sync() {
    (drifters pull --yes >/dev/null 2>&1 &)
}

drifters_auto_sync
`
}

// InstallOptions holds options for adding the hook to an rc file
type InstallOptions struct {
	Env *internal.Env
	// Shell is the user's shell, usually $SHELL.
	Shell string
}

// InstallResult describes the change
type InstallResult struct {
	RCFile string
	Backup string
	// AlreadyPresent is true when the rc file already loads the hook.
	AlreadyPresent bool
}

// RCFile returns the rc file for shell under home, or "" for shells other
// than zsh and bash.
func RCFile(home, shell string) string {
	switch filepath.Base(shell) {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "bash":
		return filepath.Join(home, ".bashrc")
	}
	return ""
}

// Install appends EvalLine to the shell's rc file after copying it to
// "<rc>.bak". An rc file that already loads the hook is left alone.
func Install(opts InstallOptions) (*InstallResult, error) {
	logger := logging.GetLogger("commands.hook")
	env := opts.Env

	rc := RCFile(env.Home(), opts.Shell)
	if rc == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "cannot detect the rc file for shell %q", opts.Shell).
			WithHint("add " + EvalLine + " to your shell startup file")
	}
	result := &InstallResult{RCFile: rc}

	content, exists, err := filesystem.ReadIfExists(env.Fs, rc)
	if err != nil {
		return nil, err
	}
	if strings.Contains(content, marker) {
		result.AlreadyPresent = true
		return result, nil
	}

	if exists {
		result.Backup = rc + ".bak"
		if err := afero.WriteFile(env.Fs, result.Backup, []byte(content), 0644); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot back up %s", rc)
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += "\n# drifters auto-sync\n" + EvalLine + "\n"
	if err := filesystem.WriteFileAtomic(env.Fs, rc, []byte(content), 0644); err != nil {
		return nil, err
	}

	logger.Info().Str("rc", rc).Msg("Shell hook installed")
	return result, nil
}
