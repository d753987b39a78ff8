package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/launchgrid/internal/fsutil"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestFindFilesByExtension_Directory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.hcl"))
	writeFile(t, filepath.Join(root, "a.hcl"))
	writeFile(t, filepath.Join(root, "nested", "c.hcl"))
	writeFile(t, filepath.Join(root, "params.yaml"))

	files, err := fsutil.FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)
}

func TestFindFilesByExtension_SingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "launch.hcl")
	writeFile(t, path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	require.NoError(t, err)
	require.Equal(t, []string{path}, files)

	other := filepath.Join(root, "notes.txt")
	writeFile(t, other)
	files, err = fsutil.FindFilesByExtension(other, ".hcl")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestFindFilesByExtension_MissingPath(t *testing.T) {
	_, err := fsutil.FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	require.Error(t, err)
}
