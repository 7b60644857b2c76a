package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

const (
	directoryPermissionsConstant           = fs.FileMode(0o755)
	filePermissionsConstant                = fs.FileMode(0o644)
	ownerDirectoryPermissionsConstant      = fs.FileMode(0o700)
	temporaryFilePatternTemplateConstant   = ".%s.*.tmp"
	copyDestinationExistsTemplateConstant  = "%w: %s"
	copySourceNotDirectoryTemplateConstant = "copy source is not a directory: %s"
	unsupportedEntryTemplateConstant       = "unsupported file type %s at %s"
	copyEntryErrorTemplateConstant         = "copy %s: %w"
	writeFileErrorTemplateConstant         = "write %s: %w"
)

var (
	// ErrCopyDestinationExists indicates CopyTree refused to overwrite an existing destination.
	ErrCopyDestinationExists = errors.New("copy destination already exists")
	// ErrSymlinksUnsupported indicates the backing file system cannot read or create symbolic links.
	ErrSymlinksUnsupported = errors.New("symbolic links are not supported by this file system")
)

// FileSystem implements the filesystem collaborator on top of an afero backend.
type FileSystem struct {
	backend afero.Fs
}

// New constructs a FileSystem over the provided backend. A nil backend selects the operating system.
func New(backend afero.Fs) FileSystem {
	if backend == nil {
		backend = afero.NewOsFs()
	}
	return FileSystem{backend: backend}
}

// NewOSFileSystem constructs a FileSystem backed by the operating system.
func NewOSFileSystem() FileSystem {
	return New(afero.NewOsFs())
}

// ListDirectories returns the sorted names of the immediate subdirectories of path.
// Symbolic links are not reported, even when they point at directories.
func (fileSystem FileSystem) ListDirectories(path string) ([]string, error) {
	entries, readError := afero.ReadDir(fileSystem.backend, path)
	if readError != nil {
		return nil, readError
	}

	directoryNames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			directoryNames = append(directoryNames, entry.Name())
		}
	}

	sort.Strings(directoryNames)
	return directoryNames, nil
}

// Exists reports whether any filesystem entry is present at path.
func (fileSystem FileSystem) Exists(path string) bool {
	_, statError := fileSystem.lstat(path)
	return statError == nil
}

// IsDirectory reports whether path resolves to a directory.
func (fileSystem FileSystem) IsDirectory(path string) bool {
	isDirectory, statError := afero.IsDir(fileSystem.backend, path)
	return statError == nil && isDirectory
}

// ReadFile reads file contents.
func (fileSystem FileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(fileSystem.backend, path)
}

// WriteFile replaces the file at path with data. The content is written to a
// temporary sibling and renamed into place so readers never observe a
// truncated file.
func (fileSystem FileSystem) WriteFile(path string, data []byte) error {
	parentDirectory := filepath.Dir(path)
	if mkdirError := fileSystem.backend.MkdirAll(parentDirectory, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, path, mkdirError)
	}

	temporaryFile, createError := afero.TempFile(fileSystem.backend, parentDirectory, fmt.Sprintf(temporaryFilePatternTemplateConstant, filepath.Base(path)))
	if createError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, path, createError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		_ = temporaryFile.Close()
		_ = fileSystem.backend.Remove(temporaryPath)
		return fmt.Errorf(writeFileErrorTemplateConstant, path, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = fileSystem.backend.Remove(temporaryPath)
		return fmt.Errorf(writeFileErrorTemplateConstant, path, closeError)
	}
	if chmodError := fileSystem.backend.Chmod(temporaryPath, filePermissionsConstant); chmodError != nil {
		_ = fileSystem.backend.Remove(temporaryPath)
		return fmt.Errorf(writeFileErrorTemplateConstant, path, chmodError)
	}
	if renameError := fileSystem.backend.Rename(temporaryPath, path); renameError != nil {
		_ = fileSystem.backend.Remove(temporaryPath)
		return fmt.Errorf(writeFileErrorTemplateConstant, path, renameError)
	}

	return nil
}

// RemoveTree deletes path and everything beneath it. Missing paths are not an error.
func (fileSystem FileSystem) RemoveTree(path string) error {
	return fileSystem.backend.RemoveAll(path)
}

// CopyTree duplicates the directory tree at source into destination, which must
// not exist yet. Regular files keep their permission bits, subdirectories are
// recreated, and symbolic links are recreated as links rather than traversed.
func (fileSystem FileSystem) CopyTree(source string, destination string) error {
	sourceInfo, statError := fileSystem.backend.Stat(source)
	if statError != nil {
		return statError
	}
	if !sourceInfo.IsDir() {
		return fmt.Errorf(copySourceNotDirectoryTemplateConstant, source)
	}
	if fileSystem.Exists(destination) {
		return fmt.Errorf(copyDestinationExistsTemplateConstant, ErrCopyDestinationExists, destination)
	}

	if mkdirError := fileSystem.backend.MkdirAll(filepath.Dir(destination), directoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}

	return afero.Walk(fileSystem.backend, source, func(path string, entryInfo os.FileInfo, walkError error) error {
		if walkError != nil {
			return fmt.Errorf(copyEntryErrorTemplateConstant, path, walkError)
		}

		relativePath, relativeError := filepath.Rel(source, path)
		if relativeError != nil {
			return fmt.Errorf(copyEntryErrorTemplateConstant, path, relativeError)
		}
		targetPath := filepath.Join(destination, relativePath)

		switch entryMode := entryInfo.Mode(); {
		case entryMode.IsDir():
			if mkdirError := fileSystem.backend.Mkdir(targetPath, entryMode.Perm()|ownerDirectoryPermissionsConstant); mkdirError != nil {
				return fmt.Errorf(copyEntryErrorTemplateConstant, path, mkdirError)
			}
			return nil
		case entryMode&fs.ModeSymlink != 0:
			if linkError := fileSystem.copySymlink(path, targetPath); linkError != nil {
				return fmt.Errorf(copyEntryErrorTemplateConstant, path, linkError)
			}
			return nil
		case entryMode.IsRegular():
			if copyError := fileSystem.copyRegularFile(path, targetPath, entryMode.Perm()); copyError != nil {
				return fmt.Errorf(copyEntryErrorTemplateConstant, path, copyError)
			}
			return nil
		default:
			return fmt.Errorf(unsupportedEntryTemplateConstant, entryMode.Type(), path)
		}
	})
}

func (fileSystem FileSystem) lstat(path string) (os.FileInfo, error) {
	if lstater, supportsLstat := fileSystem.backend.(afero.Lstater); supportsLstat {
		fileInfo, _, lstatError := lstater.LstatIfPossible(path)
		return fileInfo, lstatError
	}
	return fileSystem.backend.Stat(path)
}

func (fileSystem FileSystem) copySymlink(sourcePath string, targetPath string) error {
	reader, supportsRead := fileSystem.backend.(afero.LinkReader)
	linker, supportsLink := fileSystem.backend.(afero.Linker)
	if !supportsRead || !supportsLink {
		return ErrSymlinksUnsupported
	}

	linkTarget, readLinkError := reader.ReadlinkIfPossible(sourcePath)
	if readLinkError != nil {
		return readLinkError
	}
	return linker.SymlinkIfPossible(linkTarget, targetPath)
}

func (fileSystem FileSystem) copyRegularFile(sourcePath string, targetPath string, permissions fs.FileMode) error {
	sourceFile, openError := fileSystem.backend.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	targetFile, createError := fileSystem.backend.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, permissions)
	if createError != nil {
		return createError
	}

	if _, copyError := io.Copy(targetFile, sourceFile); copyError != nil {
		_ = targetFile.Close()
		return copyError
	}

	return targetFile.Close()
}
