package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gamerelease/internal/filesystem"
)

const (
	testDirectoryPermissions = 0o755
	testFilePermissions      = 0o644
)

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), testDirectoryPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), testFilePermissions))
}

func TestListDirectoriesReturnsSortedSubdirectories(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), testDirectoryPermissions))
	}
	writeTestFile(t, filepath.Join(root, "file.txt"), "ignored")
	require.NoError(t, os.Symlink(filepath.Join(root, "alpha"), filepath.Join(root, "link")))

	names, listError := filesystem.NewOSFileSystem().ListDirectories(root)
	require.NoError(t, listError)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestListDirectoriesFailsForMissingPath(t *testing.T) {
	_, listError := filesystem.NewOSFileSystem().ListDirectories(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, listError)
}

func TestCopyTreeReproducesStructure(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "working")
	destination := filepath.Join(root, "releases", "1.0.0")

	writeTestFile(t, filepath.Join(source, "bubble.html"), "<html></html>")
	writeTestFile(t, filepath.Join(source, "assets", "sprites", "ball.png"), "png")
	require.NoError(t, os.Mkdir(filepath.Join(source, "empty"), testDirectoryPermissions))
	require.NoError(t, os.Symlink("bubble.html", filepath.Join(source, "index.html")))

	fileSystem := filesystem.NewOSFileSystem()
	require.NoError(t, fileSystem.CopyTree(source, destination))

	content, readError := os.ReadFile(filepath.Join(destination, "assets", "sprites", "ball.png"))
	require.NoError(t, readError)
	require.Equal(t, "png", string(content))
	require.True(t, fileSystem.IsDirectory(filepath.Join(destination, "empty")))

	linkTarget, linkError := os.Readlink(filepath.Join(destination, "index.html"))
	require.NoError(t, linkError)
	require.Equal(t, "bubble.html", linkTarget)
}

func TestCopyTreeCopiesEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "working")
	destination := filepath.Join(root, "releases", "1.0.0")
	require.NoError(t, os.Mkdir(source, testDirectoryPermissions))

	fileSystem := filesystem.NewOSFileSystem()
	require.NoError(t, fileSystem.CopyTree(source, destination))

	names, listError := fileSystem.ListDirectories(destination)
	require.NoError(t, listError)
	require.Empty(t, names)
	require.True(t, fileSystem.IsDirectory(destination))
}

func TestCopyTreeRefusesExistingDestination(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "working")
	destination := filepath.Join(root, "existing")
	require.NoError(t, os.Mkdir(source, testDirectoryPermissions))
	require.NoError(t, os.Mkdir(destination, testDirectoryPermissions))

	copyError := filesystem.NewOSFileSystem().CopyTree(source, destination)
	require.ErrorIs(t, copyError, filesystem.ErrCopyDestinationExists)
}

func TestWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.html")
	fileSystem := filesystem.NewOSFileSystem()

	require.NoError(t, fileSystem.WriteFile(path, []byte("first")))
	require.NoError(t, fileSystem.WriteFile(path, []byte("second")))

	content, readError := fileSystem.ReadFile(path)
	require.NoError(t, readError)
	require.Equal(t, "second", string(content))

	entries, readDirError := os.ReadDir(filepath.Dir(path))
	require.NoError(t, readDirError)
	require.Len(t, entries, 1)
}

func TestRemoveTreeAndExists(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "release")
	writeTestFile(t, filepath.Join(target, "a", "b.txt"), "b")

	fileSystem := filesystem.NewOSFileSystem()
	require.True(t, fileSystem.Exists(target))
	require.NoError(t, fileSystem.RemoveTree(target))
	require.False(t, fileSystem.Exists(target))
	require.NoError(t, fileSystem.RemoveTree(target))
}

func TestMemoryBackedCopyAndWrite(t *testing.T) {
	fileSystem := filesystem.New(afero.NewMemMapFs())
	require.NoError(t, fileSystem.WriteFile("/games/snake/working/snake.html", []byte("<html></html>")))
	require.NoError(t, fileSystem.WriteFile("/games/snake/working/assets/tiles.png", []byte("png")))

	require.NoError(t, fileSystem.CopyTree("/games/snake/working", "/games/snake/releases/1.0.0"))

	content, readError := fileSystem.ReadFile("/games/snake/releases/1.0.0/assets/tiles.png")
	require.NoError(t, readError)
	require.Equal(t, "png", string(content))

	names, listError := fileSystem.ListDirectories("/games/snake")
	require.NoError(t, listError)
	require.Equal(t, []string{"releases", "working"}, names)
	require.True(t, fileSystem.Exists("/games/snake/releases/1.0.0/snake.html"))
}

func TestCopyTreeRejectsFileSource(t *testing.T) {
	fileSystem := filesystem.New(afero.NewMemMapFs())
	require.NoError(t, fileSystem.WriteFile("/games/snake/working", []byte("not a directory")))

	copyError := fileSystem.CopyTree("/games/snake/working", "/games/snake/releases/1.0.0")
	require.Error(t, copyError)
	require.False(t, fileSystem.Exists("/games/snake/releases/1.0.0"))
}
