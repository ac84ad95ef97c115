// Package fileset decides which local files take part in syncing an app on a
// given machine and OS.
package fileset

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/arthur-debert/drifters/pkg/filesystem"
	"github.com/arthur-debert/drifters/pkg/logging"
	"github.com/arthur-debert/drifters/pkg/rules"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// DetectOS returns the OS value used by the OS tier of the rules.
func DetectOS() string {
	switch runtime.GOOS {
	case "darwin":
		return rules.OSMacOS
	case "windows":
		return rules.OSWindows
	case "linux":
		return rules.OSLinux
	}
	return runtime.GOOS
}

// Resolver expands app patterns against a filesystem.
type Resolver struct {
	fs   afero.Fs
	home string
}

// NewResolver creates a resolver that expands "~" to home.
func NewResolver(fsys afero.Fs, home string) *Resolver {
	return &Resolver{fs: fsys, home: home}
}

// Patterns returns the include and exclude lists for machineID on os. The
// three tiers only ever add patterns.
func Patterns(app *rules.AppDefinition, machineID, os string) (include, exclude []string) {
	logger := logging.GetLogger("fileset")

	include = append(include, app.Include...)
	exclude = append(exclude, app.Exclude...)

	if osInclude, osExclude, known := app.OSPatterns(os); known {
		include = append(include, osInclude...)
		exclude = append(exclude, osExclude...)
	} else {
		logger.Warn().Str("os", os).Msg("Unknown OS, using app patterns only")
	}

	if override, ok := app.Machines[machineID]; ok {
		include = append(include, override.Include...)
		exclude = append(exclude, override.Exclude...)
	}
	return include, exclude
}

// Resolve returns the sorted, deduplicated absolute paths of existing files
// matched by the app's include patterns and not matched by any exclude
// pattern. No match is not an error.
func (r *Resolver) Resolve(app *rules.AppDefinition, machineID, os string) []string {
	logger := logging.GetLogger("fileset")
	include, exclude := Patterns(app, machineID, os)
	excluders := r.compileExcludes(exclude)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		expanded := r.ExpandHome(pattern)
		matches, err := r.expand(expanded)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid include pattern, skipping")
			continue
		}
		for _, path := range matches {
			if seen[path] || excluders.matches(path) {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}

	sort.Strings(files)
	logger.Debug().
		Int("includes", len(include)).
		Int("excludes", len(exclude)).
		Int("files", len(files)).
		Str("machine", machineID).
		Str("os", os).
		Msg("Resolved fileset")
	return files
}

// Missing returns the literal include paths, patterns without glob
// metacharacters, that name a file which does not exist yet and that no
// exclude pattern matches. A pull creates these from the stored copies.
func (r *Resolver) Missing(app *rules.AppDefinition, machineID, os string) []string {
	include, exclude := Patterns(app, machineID, os)
	excluders := r.compileExcludes(exclude)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		if strings.ContainsAny(pattern, "*?[{") {
			continue
		}
		path := filepath.Clean(r.ExpandHome(pattern))
		if !filepath.IsAbs(path) || seen[path] || excluders.matches(path) {
			continue
		}
		seen[path] = true
		if _, err := r.fs.Stat(path); err == nil {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// ExpandHome replaces a leading "~" with the resolver's home directory.
func (r *Resolver) ExpandHome(pattern string) string {
	if pattern == "~" {
		return r.home
	}
	if strings.HasPrefix(pattern, "~/") {
		return filepath.Join(r.home, pattern[2:])
	}
	return pattern
}

func (r *Resolver) expand(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return r.walkGlob(pattern)
	}

	matches, err := afero.Glob(r.fs, pattern)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, m := range matches {
		if filesystem.IsRegular(r.fs, m) {
			files = append(files, m)
		}
	}
	return files, nil
}

// walkGlob matches a recursive pattern by walking its static prefix.
func (r *Resolver) walkGlob(pattern string) ([]string, error) {
	matcher, err := compileRecursive(filepath.ToSlash(pattern))
	if err != nil {
		return nil, err
	}

	root := staticPrefix(pattern)
	if _, err := r.fs.Stat(root); err != nil {
		return nil, nil
	}

	var files []string
	err = afero.Walk(r.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			// unreadable subtrees are skipped
			return nil
		}
		if info.Mode().IsRegular() && matcher.Match(filepath.ToSlash(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// staticPrefix returns the longest leading directory of pattern that holds
// no glob syntax.
func staticPrefix(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var static []string
	for _, part := range parts {
		if strings.ContainsAny(part, "*?[{\\") {
			break
		}
		static = append(static, part)
	}
	prefix := strings.Join(static, "/")
	if prefix == "" {
		if strings.HasPrefix(pattern, "/") {
			return "/"
		}
		return "."
	}
	return filepath.FromSlash(prefix)
}

type anyGlob []glob.Glob

func (a anyGlob) Match(s string) bool {
	for _, g := range a {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// compileRecursive compiles pattern with "/" as separator. "**/" also
// matches zero directories, so "a/**/b" matches "a/b".
func compileRecursive(pattern string) (anyGlob, error) {
	variants := []string{pattern}
	if collapsed := strings.ReplaceAll(pattern, "/**/", "/"); collapsed != pattern {
		variants = append(variants, collapsed)
	}

	var globs anyGlob
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

type excluder struct {
	raw  string
	glob glob.Glob
}

type excluders []excluder

func (r *Resolver) compileExcludes(patterns []string) excluders {
	logger := logging.GetLogger("fileset")
	out := make(excluders, 0, len(patterns))
	for _, pattern := range patterns {
		e := excluder{raw: pattern}
		g, err := glob.Compile(filepath.ToSlash(r.ExpandHome(pattern)))
		if err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid exclude pattern, using substring match only")
		} else {
			e.glob = g
		}
		out = append(out, e)
	}
	return out
}

// matches applies both exclusion tests: a glob match of the expanded
// pattern against the whole path, and substring containment of the raw
// pattern.
func (ex excluders) matches(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, e := range ex {
		if e.glob != nil && e.glob.Match(slashed) {
			return true
		}
		if e.raw != "" && strings.Contains(path, e.raw) {
			return true
		}
	}
	return false
}
