// Package editor opens files in the user's text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
)

// Fallback is used when neither the config nor the environment names an
// editor.
const Fallback = "vi"

// Command returns the editor command line: preferred when set, then
// $VISUAL, then $EDITOR, then Fallback. Arguments are split on whitespace
// so "code --wait" works.
func Command(preferred string) []string {
	for _, candidate := range []string{preferred, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	return []string{Fallback}
}

// Editor runs an editor command attached to the given streams.
type Editor struct {
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Editor for the preferred command attached to the terminal.
func New(preferred string) *Editor {
	return &Editor{
		Argv:   Command(preferred),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Open runs the editor on path and waits for it to exit.
func (e *Editor) Open(ctx context.Context, path string) error {
	if len(e.Argv) == 0 {
		return errors.New(errors.ErrInvalidInput, "no editor command configured")
	}
	args := append(append([]string{}, e.Argv[1:]...), path)
	logging.LogCommand(e.Argv[0], args)

	cmd := exec.CommandContext(ctx, e.Argv[0], args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrEditor, "editor %q failed on %s", strings.Join(e.Argv, " "), path).
			WithDetail("path", path).
			WithHint("set preferred_editor in the drifters config, or $VISUAL or $EDITOR")
	}
	return nil
}
