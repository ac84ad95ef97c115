package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/spf13/afero"
)

// NewOS returns the real filesystem.
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Exists reports whether path exists.
func Exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// IsRegular reports whether path exists and is a regular file.
func IsRegular(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadIfExists returns the content of path and whether it existed.
func ReadIfExists(fsys afero.Fs, path string) (string, bool, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).
			WithDetail("path", path)
	}
	return string(data), true, nil
}

// maxLinkDepth bounds symlink chains followed by ResolveLink.
const maxLinkDepth = 40

// ResolveLink follows symlinks at path and returns the file they end at,
// which may not exist yet. Filesystems without symlink support return path
// unchanged.
func ResolveLink(fsys afero.Fs, path string) (string, error) {
	lstater, ok := fsys.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for i := 0; i < maxLinkDepth; i++ {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if os.IsNotExist(err) {
				return path, nil
			}
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).
				WithDetail("path", path)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", path).
				WithDetail("path", path)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", errors.Newf(errors.ErrFileAccess, "too many levels of symbolic links at %s", path).
		WithDetail("path", path)
}

// WriteFileAtomic writes data next to path and renames it into place,
// creating parent directories as needed. An existing file keeps its mode.
// When path is a symlink the write goes to the file it points at and the
// link stays in place.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm fs.FileMode) error {
	path, err := ResolveLink(fsys, path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir).
			WithDetail("path", dir)
	}

	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.drifters-tmp", filepath.Base(path)))
	if err := afero.WriteFile(fsys, tmp, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).
			WithDetail("path", path)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path).
			WithDetail("path", path)
	}
	return nil
}
