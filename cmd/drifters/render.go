package drifters

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arthur-debert/drifters/pkg/commands"
	"github.com/arthur-debert/drifters/pkg/commands/pull"
	"github.com/arthur-debert/drifters/pkg/commands/push"
	"github.com/arthur-debert/drifters/pkg/style"
	"github.com/arthur-debert/drifters/pkg/textdiff"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// tildify shortens paths below home to "~/...".
func tildify(home, path string) string {
	if home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "~/" + filepath.ToSlash(rel)
	}
	return path
}

func renderWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, style.WarningStyle.Render("warning: ")+msg)
	}
}

func renderPush(w io.Writer, home string, res *commands.PushResult) {
	for _, f := range res.Files {
		path := style.PathStyle.Render(tildify(home, f.Path))
		switch f.Status {
		case push.StatusPushed:
			fmt.Fprintf(w, "  %s %s %s\n", style.SuccessStyle.Render("↑"), style.AppStyle.Render(f.App), path)
		case push.StatusSkipped:
			fmt.Fprintf(w, "  %s %s %s %s\n", style.WarningStyle.Render("-"), style.AppStyle.Render(f.App), path,
				style.MutedStyle.Render("("+f.Reason+")"))
		}
	}
	renderWarnings(w, res.Warnings)

	if res.Pushed() == 0 {
		fmt.Fprintln(w, MsgNothingToPush)
		return
	}
	fmt.Fprintf(w, MsgPushedFormat, res.Pushed())
}

func renderPull(w io.Writer, home string, res *commands.PullResult) {
	for _, c := range res.Changes {
		path := style.PathStyle.Render(tildify(home, c.Path))
		switch c.Action {
		case pull.ActionCreate, pull.ActionUpdate:
			fmt.Fprintf(w, "  %s %s %s %s\n", style.InfoStyle.Render("↓"), style.AppStyle.Render(c.App), path,
				style.MutedStyle.Render(fmt.Sprintf("(%s from %s)", c.Action, c.Source)))
		case pull.ActionDeclined:
			fmt.Fprintf(w, "  %s %s %s %s\n", style.WarningStyle.Render("-"), style.AppStyle.Render(c.App), path,
				style.MutedStyle.Render("(declined)"))
		}
	}
	renderWarnings(w, res.Warnings)

	applied := len(res.Applied())
	if applied == 0 {
		fmt.Fprintln(w, MsgNothingToPull)
	} else if !res.DryRun {
		fmt.Fprintf(w, MsgAppliedFormat, applied)
	}
	if res.DryRun {
		fmt.Fprintln(w, MsgDryRunNotice)
	}
}

func renderDiff(w io.Writer, home string, res *commands.DiffResult) {
	renderWarnings(w, res.Warnings)
	if len(res.Files) == 0 {
		fmt.Fprintln(w, MsgNoDiff)
		return
	}
	for _, f := range res.Files {
		header := fmt.Sprintf("%s %s (%s from %s)", f.App, tildify(home, f.Path), f.Action, f.Source)
		fmt.Fprintln(w, style.DiffHeaderStyle.Render(header))
		for _, line := range textdiff.Unified(f.Lines, diffContext) {
			switch {
			case strings.HasPrefix(line, "+"):
				line = style.DiffAddStyle.Render(line)
			case strings.HasPrefix(line, "-"):
				line = style.DiffRemoveStyle.Render(line)
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
}

func renderStatus(w io.Writer, home string, res *commands.StatusResult) {
	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		style.MutedStyle.Render("machine:"), res.Machine,
		style.MutedStyle.Render("os:"), res.OS,
		style.MutedStyle.Render("store:"), res.RepoURL)
	if !res.Registered {
		fmt.Fprintln(w, style.WarningStyle.Render(MsgNotRegistered))
	}
	if len(res.Apps) == 0 {
		fmt.Fprintln(w, MsgNoApps)
		return
	}
	for _, app := range res.Apps {
		fmt.Fprintf(w, "\n%s\n", style.AppStyle.Render(app.Name))
		if len(app.Files) == 0 {
			fmt.Fprintln(w, style.ListItemStyle.Render(style.MutedStyle.Render("no files")))
			continue
		}
		for _, f := range app.Files {
			row := fmt.Sprintf("%-16s %s", style.RenderState(f.State), tildify(home, f.Path))
			if f.Source != "" {
				row += style.MutedStyle.Render(" (from " + f.Source + ")")
			}
			if f.Message != "" {
				row += style.MutedStyle.Render(" " + f.Message)
			}
			fmt.Fprintln(w, style.ListItemStyle.Render(row))
		}
	}
}

func renderList(w io.Writer, home string, res *commands.ListResult) {
	fmt.Fprintln(w, style.TitleStyle.Render("Apps"))
	if len(res.Apps) == 0 {
		fmt.Fprintln(w, style.ListItemStyle.Render(MsgNoApps))
	}
	for _, app := range res.Apps {
		fmt.Fprintln(w, style.ListItemStyle.Render(style.AppStyle.Render(app.Name)))
		fmt.Fprintln(w, style.ListItemStyle.Render("  include: "+strings.Join(app.App.Include, ", ")))
		if len(app.App.Exclude) > 0 {
			fmt.Fprintln(w, style.ListItemStyle.Render("  exclude: "+strings.Join(app.App.Exclude, ", ")))
		}
		for _, id := range slices.Sorted(maps.Keys(app.App.Machines)) {
			o := app.App.Machines[id]
			var parts []string
			if len(o.Include) > 0 {
				parts = append(parts, "+"+strings.Join(o.Include, ", +"))
			}
			if len(o.Exclude) > 0 {
				parts = append(parts, "-"+strings.Join(o.Exclude, ", -"))
			}
			fmt.Fprintln(w, style.ListItemStyle.Render(fmt.Sprintf("  %s: %s", id, strings.Join(parts, " "))))
		}
		for _, path := range app.Files {
			fmt.Fprintln(w, style.ListItemStyle.Render("    "+style.PathStyle.Render(tildify(home, path))))
		}
	}

	fmt.Fprintf(w, "\n%s\n", style.TitleStyle.Render("Machines"))
	for _, m := range res.Machines {
		row := fmt.Sprintf("%s (%s)", m.ID, m.Info.OS)
		if !m.Info.LastSync.IsZero() {
			row += style.MutedStyle.Render(" last sync " + m.Info.LastSync.Local().Format("2006-01-02 15:04"))
		}
		if m.Current {
			row += " " + style.SuccessStyle.Render("*")
		}
		fmt.Fprintln(w, style.ListItemStyle.Render(row))
	}
	if !res.Registered {
		fmt.Fprintln(w, style.WarningStyle.Render(MsgNotRegistered))
	}
}
