package store

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/logging"
)

// Identity used for commits when git has no user configured.
const (
	FallbackName  = "Drifters User"
	FallbackEmail = "drifters@localhost"
)

// GitStore implements Store by running the system git binary, which picks up
// the user's SSH and credential setup.
type GitStore struct {
	binary string
}

// NewGitStore returns a store using git from PATH.
func NewGitStore() *GitStore {
	return &GitStore{binary: "git"}
}

func (g *GitStore) Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dir)
	}
	if _, err := g.run(ctx, "", "clone", url, dir); err != nil {
		return errors.Wrapf(err, errors.ErrStoreClone, "failed to clone %s", url).
			WithDetail("remote", url).
			WithHint("check the repository URL and your git credentials")
	}
	return nil
}

func (g *GitStore) Init(ctx context.Context, dir, url string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	if _, err := g.run(ctx, dir, "init"); err != nil {
		return errors.Wrapf(err, errors.ErrStoreClone, "failed to initialize repository in %s", dir).
			WithDetail("remote", url)
	}
	if _, err := g.run(ctx, dir, "remote", "add", "origin", url); err != nil {
		return errors.Wrapf(err, errors.ErrStoreClone, "failed to add remote %s", url).
			WithDetail("remote", url)
	}
	return nil
}

func (g *GitStore) Pull(ctx context.Context, dir string) error {
	if _, err := g.run(ctx, dir, "pull", "--rebase"); err != nil {
		url, _ := g.RemoteURL(ctx, dir)
		return errors.Wrapf(err, errors.ErrStorePull, "failed to pull from %s", url).
			WithDetail("remote", url)
	}
	return nil
}

func (g *GitStore) CommitAndPush(ctx context.Context, dir, message string) (bool, error) {
	logger := logging.GetLogger("store")

	if _, err := g.run(ctx, dir, "add", "-A"); err != nil {
		return false, errors.Wrap(err, errors.ErrStoreCommit, "failed to stage changes")
	}

	// exit status 1 means the index differs from HEAD
	if _, err := g.run(ctx, dir, "diff", "--cached", "--quiet"); err == nil {
		logger.Debug().Str("dir", dir).Msg("Nothing to commit")
		return false, nil
	}

	args := append(g.identityArgs(ctx, dir), "commit", "-m", message)
	if _, err := g.run(ctx, dir, args...); err != nil {
		return false, errors.Wrap(err, errors.ErrStoreCommit, "failed to commit changes")
	}

	url, _ := g.RemoteURL(ctx, dir)
	if _, err := g.run(ctx, dir, "push", "-u", "origin", "HEAD"); err != nil {
		return true, errors.Wrapf(err, errors.ErrStorePush, "failed to push to %s", url).
			WithDetail("remote", url).
			WithHint("check your network connection and push access to the repository")
	}

	logger.Info().Str("remote", url).Str("message", message).Msg("Pushed changes")
	return true, nil
}

func (g *GitStore) CommitTime(ctx context.Context, dir, relPath string) (time.Time, error) {
	out, err := g.run(ctx, dir, "log", "-1", "--format=%ct", "--", relPath)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrStoreHistory, "failed to read history of %s", relPath).
			WithDetail("path", relPath)
	}

	stamp := strings.TrimSpace(out)
	if stamp == "" {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrStoreHistory, "unexpected commit time %q for %s", stamp, relPath)
	}
	return time.Unix(secs, 0), nil
}

func (g *GitStore) RemoteURL(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrStorePull, "failed to read remote URL")
	}
	return strings.TrimSpace(out), nil
}

// identityArgs returns -c overrides when no commit identity is configured.
func (g *GitStore) identityArgs(ctx context.Context, dir string) []string {
	var args []string
	if out, err := g.run(ctx, dir, "config", "user.name"); err != nil || strings.TrimSpace(out) == "" {
		args = append(args, "-c", "user.name="+FallbackName)
	}
	if out, err := g.run(ctx, dir, "config", "user.email"); err != nil || strings.TrimSpace(out) == "" {
		args = append(args, "-c", "user.email="+FallbackEmail)
	}
	return args
}

// run executes git in dir and returns stdout. On failure the error carries
// git's combined output.
func (g *GitStore) run(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	logging.LogCommand(g.binary, args)

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
