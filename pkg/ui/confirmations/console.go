// Package confirmations provides console confirmation prompts.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/drifters/pkg/errors"
)

// ConsoleDialog asks yes/no questions on a terminal.
type ConsoleDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDialog creates a dialog bound to stdin and stdout.
func NewConsoleDialog() *ConsoleDialog {
	return NewDialog(os.Stdin, os.Stdout)
}

// NewDialog creates a dialog reading answers from in and writing prompts to out.
func NewDialog(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

// Confirm prints question followed by "[y/N]" and reports whether the answer
// was yes. An empty answer or end of input is a no.
func (d *ConsoleDialog) Confirm(question string) (bool, error) {
	fmt.Fprintf(d.out, "%s [y/N]: ", question)

	line, err := d.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to read user input")
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(d.out)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
