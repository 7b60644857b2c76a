package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/execshell"
	"github.com/temirov/gamerelease/internal/filesystem"
	"github.com/temirov/gamerelease/internal/gitrepo"
	"github.com/temirov/gamerelease/internal/ui"
)

// FileSystem is the union of the storage operations used by the registry,
// the index generator and the publisher.
type FileSystem interface {
	ListDirectories(path string) ([]string, error)
	Exists(path string) bool
	IsDirectory(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	CopyTree(source string, destination string) error
	RemoveTree(path string) error
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing FileSystem) FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.NewOSFileSystem()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// When humanReadableLogging is set, git lifecycle events are also rendered on consoleLogger.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, consoleLogger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var observers []execshell.CommandEventObserver
	if humanReadableLogging {
		observers = append(observers, ui.NewConsoleCommandEventLogger(consoleLogger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
