package internal

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/merge"
	"github.com/arthur-debert/drifters/pkg/replicas"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/arthur-debert/drifters/pkg/sections"
)

// Target is a local file an app covers on this machine.
type Target struct {
	Path string
	// Exists is false for literal include paths not created yet.
	Exists bool
}

// Targets returns the resolved fileset of app followed by the literal
// include paths that do not exist yet, sorted by path.
func (e *Env) Targets(app *rules.AppDefinition, os string) []Target {
	resolver := e.Resolver()
	var targets []Target
	for _, path := range resolver.Resolve(app, e.MachineID(), os) {
		targets = append(targets, Target{Path: path, Exists: true})
	}
	for _, path := range resolver.Missing(app, e.MachineID(), os) {
		targets = append(targets, Target{Path: path})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })
	return targets
}

// Incoming is what a pull would do to one local file.
type Incoming struct {
	App  string
	Path string
	// Local is the current content; LocalExists is false when the file is
	// missing.
	Local       string
	LocalExists bool
	// Versions is the number of stored copies considered. Zero means no
	// machine has pushed the file and the other fields are empty.
	Versions int
	Winner   merge.Result
	// After is the content the local file holds after the pull: the winning
	// content with this file's exclude sections kept.
	After string
}

// Changed reports whether applying the plan would modify the local file.
func (in Incoming) Changed() bool {
	if in.Versions == 0 {
		return false
	}
	return !in.LocalExists || in.After != in.Local
}

// PlanFile computes the pull of one local file: it collects every stored
// copy of the file's base name, merges them and keeps the local exclude
// sections. filter limits the copies to one machine. PlanFile writes
// nothing.
func (e *Env) PlanFile(ctx context.Context, s *State, app, path, filter string) (Incoming, error) {
	in := Incoming{App: app, Path: path}

	local, exists, err := filesystem.ReadIfExists(e.Fs, path)
	if err != nil {
		return in, err
	}
	in.Local, in.LocalExists = local, exists

	collector := replicas.NewCollector(e.Fs, e.Store, s.Layout.Root)
	versions, err := collector.Collect(ctx, s.Layout.MachinesDir(app), filepath.Base(path), filter)
	if err != nil {
		return in, err
	}
	in.Versions = len(versions)
	if len(versions) == 0 {
		return in, nil
	}

	in.Winner, err = merge.Explain(versions, e.MachineID())
	if err != nil {
		return in, err
	}

	in.After = in.Winner.Content
	if exists {
		in.After, err = sections.MergeLocal(local, in.Winner.Content, sections.CommentPrefix(path))
		if err != nil {
			return in, errors.Wrapf(err, errors.ErrMalformedContent, "cannot merge into %s", path).
				WithDetail("path", path)
		}
	}
	return in, nil
}
