package pull

import (
	"context"

	"github.com/arthur-debert/drifters/pkg/commands/internal"
	"github.com/arthur-debert/drifters/pkg/textdiff"
)

// DiffOptions holds options for previewing a pull
type DiffOptions struct {
	Env     *internal.Env
	App     string
	Machine string
}

// FileDiff is the line diff of one file a pull would change
type FileDiff struct {
	Change
	Lines []textdiff.Line
}

// DiffResult lists the files a pull would change
type DiffResult struct {
	Files    []FileDiff
	Warnings []string
}

// Diff runs the pull planner without writing and returns a line diff for
// every file that would change.
func Diff(ctx context.Context, opts DiffOptions) (*DiffResult, error) {
	res, err := Pull(ctx, PullOptions{
		Env:     opts.Env,
		App:     opts.App,
		Machine: opts.Machine,
		DryRun:  true,
	})
	if err != nil {
		return nil, err
	}

	out := &DiffResult{Warnings: res.Warnings}
	for _, c := range res.Applied() {
		out.Files = append(out.Files, FileDiff{
			Change: c,
			Lines:  textdiff.Lines(c.Before, c.After),
		})
	}
	return out, nil
}
