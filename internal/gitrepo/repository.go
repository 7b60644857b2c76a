package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gamerelease/internal/execshell"
)

const (
	gitTagSubcommandConstant                = "tag"
	gitTagListFlagConstant                  = "-l"
	gitTagDeleteFlagConstant                = "-d"
	gitTagAnnotateFlagConstant              = "-a"
	gitTagMessageFlagConstant               = "-m"
	gitPushSubcommandConstant               = "push"
	gitStatusSubcommandConstant             = "status"
	gitStatusPorcelainFlagConstant          = "--porcelain"
	gitPathSeparatorConstant                = "--"
	gitTerminalPromptVariableConstant       = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant       = "0"
	operationErrorTemplateConstant          = "git %s %s: %v"
	operationErrorNoSubjectTemplateConstant = "git %s: %v"
	tagLookupOperationConstant              = "tag lookup"
	tagCreateOperationConstant              = "tag create"
	tagDeleteOperationConstant              = "tag delete"
	tagPushOperationConstant                = "tag push"
	statusOperationConstant                 = "status"
	executorNotConfiguredMessageConstant    = "git executor not configured"
	tagNameRequiredMessageConstant          = "tag name required"
	remoteNameRequiredMessageConstant       = "remote name required"
)

var (
	// ErrExecutorNotConfigured indicates the repository was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrTagNameRequired indicates an empty tag name was supplied.
	ErrTagNameRequired = errors.New(tagNameRequiredMessageConstant)
	// ErrRemoteNameRequired indicates an empty remote name was supplied.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// OperationError reports a git operation that failed.
type OperationError struct {
	Operation string
	Subject   string
	Cause     error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	if len(operationError.Subject) == 0 {
		return fmt.Sprintf(operationErrorNoSubjectTemplateConstant, operationError.Operation, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Subject, operationError.Cause)
}

// Unwrap exposes the underlying execution failure.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Repository runs git against a single repository root.
type Repository struct {
	executor GitExecutor
	rootPath string
}

// NewRepository constructs a Repository whose commands run in rootPath.
func NewRepository(executor GitExecutor, rootPath string) (*Repository, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Repository{executor: executor, rootPath: rootPath}, nil
}

// RootPath returns the directory git commands run in.
func (repository *Repository) RootPath() string {
	return repository.rootPath
}

// TagExists reports whether a local tag with exactly this name exists.
func (repository *Repository) TagExists(executionContext context.Context, tagName string) (bool, error) {
	if len(strings.TrimSpace(tagName)) == 0 {
		return false, ErrTagNameRequired
	}

	result, executionError := repository.run(executionContext, []string{gitTagSubcommandConstant, gitTagListFlagConstant, tagName}, nil)
	if executionError != nil {
		return false, OperationError{Operation: tagLookupOperationConstant, Subject: tagName, Cause: executionError}
	}

	for _, line := range strings.Split(result.StandardOutput, "\n") {
		if strings.TrimSpace(line) == tagName {
			return true, nil
		}
	}
	return false, nil
}

// CreateTag creates a local tag at HEAD. A non-empty message produces an annotated tag.
func (repository *Repository) CreateTag(executionContext context.Context, tagName string, message string) error {
	if len(strings.TrimSpace(tagName)) == 0 {
		return ErrTagNameRequired
	}

	arguments := []string{gitTagSubcommandConstant, tagName}
	if trimmedMessage := strings.TrimSpace(message); len(trimmedMessage) > 0 {
		arguments = []string{gitTagSubcommandConstant, gitTagAnnotateFlagConstant, tagName, gitTagMessageFlagConstant, trimmedMessage}
	}

	if _, executionError := repository.run(executionContext, arguments, nil); executionError != nil {
		return OperationError{Operation: tagCreateOperationConstant, Subject: tagName, Cause: executionError}
	}
	return nil
}

// DeleteTag removes a local tag.
func (repository *Repository) DeleteTag(executionContext context.Context, tagName string) error {
	if len(strings.TrimSpace(tagName)) == 0 {
		return ErrTagNameRequired
	}

	if _, executionError := repository.run(executionContext, []string{gitTagSubcommandConstant, gitTagDeleteFlagConstant, tagName}, nil); executionError != nil {
		return OperationError{Operation: tagDeleteOperationConstant, Subject: tagName, Cause: executionError}
	}
	return nil
}

// PushTag pushes a single tag to the named remote without prompting for credentials.
func (repository *Repository) PushTag(executionContext context.Context, remoteName string, tagName string) error {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return ErrRemoteNameRequired
	}
	if len(strings.TrimSpace(tagName)) == 0 {
		return ErrTagNameRequired
	}

	environment := map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant}
	if _, executionError := repository.run(executionContext, []string{gitPushSubcommandConstant, remoteName, tagName}, environment); executionError != nil {
		return OperationError{Operation: tagPushOperationConstant, Subject: remoteName + " " + tagName, Cause: executionError}
	}
	return nil
}

// HasUncommittedChanges reports whether git status lists anything under path.
func (repository *Repository) HasUncommittedChanges(executionContext context.Context, path string) (bool, error) {
	arguments := []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant}
	if len(strings.TrimSpace(path)) > 0 {
		arguments = append(arguments, gitPathSeparatorConstant, path)
	}

	result, executionError := repository.run(executionContext, arguments, nil)
	if executionError != nil {
		return false, OperationError{Operation: statusOperationConstant, Subject: path, Cause: executionError}
	}
	return len(strings.TrimSpace(result.StandardOutput)) > 0, nil
}

func (repository *Repository) run(executionContext context.Context, arguments []string, environment map[string]string) (execshell.ExecutionResult, error) {
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.rootPath,
		EnvironmentVariables: environment,
	})
}
