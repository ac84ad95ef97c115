package drifters

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/style"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled reports whether w is a terminal that accepts styling.
// NO_COLOR turns styling off everywhere.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// helpFormatter renders the headings of the usage template.
type helpFormatter struct {
	color bool
}

// heading renders a section heading such as "USAGE:".
func (h helpFormatter) heading(s string) string {
	s = strings.ToUpper(s)
	if !h.color {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// groupTitle renders a command group title such as "SYNC:".
func (h helpFormatter) groupTitle(s string) string {
	if !h.color {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// initTemplateFormatting adds the heading functions used by the usage
// template. Help goes to stdout.
func initTemplateFormatting() {
	h := helpFormatter{color: colorEnabled(os.Stdout)}
	cobra.AddTemplateFuncs(template.FuncMap{
		"heading":    h.heading,
		"groupTitle": h.groupTitle,
	})
}

// WriteError prints err the way the drifters binary reports failures,
// followed by its hint when it carries one.
func WriteError(w io.Writer, err error) {
	msg := fmt.Sprintf("Error: %v", err)
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg = fmt.Sprintf("Error [%s]: %s", code, errorMessage(err))
	}
	hint := errors.Hint(err)

	if colorEnabled(w) {
		msg = style.ErrorStyle.Render(msg)
		if hint != "" {
			hint = style.MutedStyle.Render(hint)
		}
	}
	fmt.Fprintln(w, msg)
	if hint != "" {
		fmt.Fprintln(w, "Hint: "+hint)
	}
}

// errorMessage drops the "[CODE] " prefix a DriftersError puts on itself.
func errorMessage(err error) string {
	s := err.Error()
	code := "[" + string(errors.GetErrorCode(err)) + "] "
	return strings.TrimPrefix(s, code)
}
