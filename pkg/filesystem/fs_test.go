package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	fsys := NewMemory()

	err := WriteFileAtomic(fsys, "/a/b/c.txt", []byte("hello"), 0600)
	require.NoError(t, err)

	content, err := afero.ReadFile(fsys, "/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.False(t, Exists(fsys, "/a/b/.c.txt.drifters-tmp"))

	// overwrite keeps the original mode
	require.NoError(t, WriteFileAtomic(fsys, "/a/b/c.txt", []byte("bye"), 0644))
	info, err := fsys.Stat("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())
}

func TestReadIfExists(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, afero.WriteFile(fsys, "/x", []byte("data"), 0644))

	content, ok, err := ReadIfExists(fsys, "/x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "data", content)

	_, ok, err = ReadIfExists(fsys, "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsRegular(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, afero.WriteFile(fsys, "/dir/file", []byte("x"), 0644))

	assert.True(t, IsRegular(fsys, "/dir/file"))
	assert.False(t, IsRegular(fsys, "/dir"))
	assert.False(t, IsRegular(fsys, "/missing"))
	assert.True(t, Exists(fsys, "/dir"))
}

func TestWriteFileAtomic_ThroughSymlink(t *testing.T) {
	fsys := NewOS()
	dir := t.TempDir()
	real := filepath.Join(dir, "dotfiles", "bashrc")
	require.NoError(t, os.MkdirAll(filepath.Dir(real), 0755))
	require.NoError(t, os.WriteFile(real, []byte("old\n"), 0600))

	tests := []struct {
		name   string
		target string
	}{
		{"absolute link", real},
		{"relative link", filepath.Join("dotfiles", "bashrc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := filepath.Join(dir, ".bashrc")
			_ = os.Remove(link)
			require.NoError(t, os.Symlink(tt.target, link))

			require.NoError(t, WriteFileAtomic(fsys, link, []byte(tt.name+"\n"), 0644))

			info, err := os.Lstat(link)
			require.NoError(t, err)
			assert.NotZero(t, info.Mode()&os.ModeSymlink, "the link stays a link")

			content, err := os.ReadFile(real)
			require.NoError(t, err)
			assert.Equal(t, tt.name+"\n", string(content))

			info, err = os.Stat(real)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		})
	}
}

func TestResolveLink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	chain := filepath.Join(dir, "chain")
	dangling := filepath.Join(dir, "dangling")
	loop := filepath.Join(dir, "loop")
	require.NoError(t, os.WriteFile(real, []byte("x"), 0644))
	require.NoError(t, os.Symlink("real", filepath.Join(dir, "first")))
	require.NoError(t, os.Symlink("first", chain))
	require.NoError(t, os.Symlink(filepath.Join(dir, "later"), dangling))
	require.NoError(t, os.Symlink("loop", loop))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"plain file", real, real, false},
		{"missing file", filepath.Join(dir, "missing"), filepath.Join(dir, "missing"), false},
		{"link chain", chain, real, false},
		{"dangling link", dangling, filepath.Join(dir, "later"), false},
		{"link loop", loop, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLink(NewOS(), tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := ResolveLink(NewMemory(), "/a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)
}
