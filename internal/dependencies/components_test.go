package dependencies_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/execshell"
	"github.com/temirov/gamerelease/internal/failures"
	"github.com/temirov/gamerelease/internal/releaselock"
)

type recordingGitExecutor struct {
	invocations []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	return execshell.ExecutionResult{}, nil
}

func workspaceConfiguration(t *testing.T) dependencies.Configuration {
	t.Helper()
	workspace := t.TempDir()
	configuration := dependencies.DefaultConfiguration()
	configuration.Storage.Root = filepath.Join(workspace, "games")
	configuration.Storage.RepositoryRoot = workspace
	configuration.Index.Template = filepath.Join(workspace, "index.template.html")
	configuration.Index.Output = filepath.Join(workspace, "index.html")
	require.NoError(t, os.MkdirAll(configuration.Storage.Root, 0o755))
	return configuration
}

func TestSanitizeRestoresDefaults(t *testing.T) {
	sanitized := dependencies.Configuration{
		Publish: dependencies.PublishConfiguration{TagMessage: "  ", LockFile: " custom.lock ", LockTimeout: -time.Second},
	}.Sanitize()

	defaults := dependencies.DefaultConfiguration()
	require.Equal(t, defaults.Storage, sanitized.Storage)
	require.Equal(t, defaults.Index.Placeholder, sanitized.Index.Placeholder)
	require.Equal(t, defaults.Index.WatchDebounce, sanitized.Index.WatchDebounce)
	require.Equal(t, "origin", sanitized.Publish.Remote)
	require.Empty(t, sanitized.Publish.TagMessage)
	require.Equal(t, "custom.lock", sanitized.Publish.LockFile)
	require.Zero(t, sanitized.Publish.LockTimeout)
}

func TestDefaultConfigurationValuesCoverEveryKey(t *testing.T) {
	values := dependencies.DefaultConfigurationValues()
	for _, key := range []string{
		"storage.root", "storage.working_directory", "storage.releases_directory", "storage.repository_root",
		"index.template", "index.output", "index.placeholder", "index.link_prefix",
		"index.require_completion_marker", "index.watch_debounce",
		"publish.remote", "publish.tag_message", "publish.regenerate_index", "publish.lock_file", "publish.lock_timeout",
	} {
		require.Contains(t, values, key)
	}
	require.Equal(t, "500ms", values["index.watch_debounce"])
}

func TestAssembleWiresComponents(t *testing.T) {
	configuration := workspaceConfiguration(t)
	gitExecutor := &recordingGitExecutor{}

	components, assembleError := dependencies.Assemble(configuration, dependencies.Inputs{GitExecutor: gitExecutor})
	require.NoError(t, assembleError)
	require.Equal(t, configuration.Storage.Root, components.Layout.Root)
	require.Equal(t, configuration.Storage.RepositoryRoot, components.Repository.RootPath())

	entries, listError := components.Registry.ListApplications(context.Background())
	require.NoError(t, listError)
	require.Empty(t, entries)

	publisher, publisherError := components.NewPublisher(true)
	require.NoError(t, publisherError)
	require.NotNil(t, publisher)

	watcher, watcherError := components.NewWatcher(nil)
	require.NoError(t, watcherError)
	require.NotNil(t, watcher)
}

func TestAssembleResolvesRelativePaths(t *testing.T) {
	workspace := t.TempDir()
	t.Chdir(workspace)

	components, assembleError := dependencies.Assemble(dependencies.DefaultConfiguration(), dependencies.Inputs{GitExecutor: &recordingGitExecutor{}})
	require.NoError(t, assembleError)

	resolvedWorkspace, evalError := filepath.EvalSymlinks(workspace)
	require.NoError(t, evalError)
	actualRoot, rootEvalError := filepath.EvalSymlinks(filepath.Dir(components.Layout.Root))
	require.NoError(t, rootEvalError)

	require.True(t, filepath.IsAbs(components.Layout.Root))
	require.Equal(t, resolvedWorkspace, actualRoot)
	require.Equal(t, "games", filepath.Base(components.Layout.Root))
	require.Equal(t, "index.html", filepath.Base(components.Configuration.Index.Output))
}

func TestAssembleRejectsInvalidLayout(t *testing.T) {
	configuration := workspaceConfiguration(t)
	configuration.Storage.WorkingDirectory = "same"
	configuration.Storage.ReleasesDirectory = "same"

	_, assembleError := dependencies.Assemble(configuration, dependencies.Inputs{GitExecutor: &recordingGitExecutor{}})
	require.Error(t, assembleError)
	require.True(t, failures.IsKind(assembleError, failures.KindConfiguration))
}

func TestAcquirePublishLock(t *testing.T) {
	configuration := workspaceConfiguration(t)

	components, assembleError := dependencies.Assemble(configuration, dependencies.Inputs{GitExecutor: &recordingGitExecutor{}})
	require.NoError(t, assembleError)

	lock, lockError := components.AcquirePublishLock(context.Background())
	require.NoError(t, lockError)
	require.Equal(t, filepath.Join(configuration.Storage.Root, releaselock.DefaultLockFileName), lock.Path())

	_, secondError := components.AcquirePublishLock(context.Background())
	require.ErrorIs(t, secondError, releaselock.ErrLockHeld)
	require.NoError(t, lock.Release())

	configuration.Publish.LockFile = ""
	unlockedComponents, unlockedError := dependencies.Assemble(configuration, dependencies.Inputs{GitExecutor: &recordingGitExecutor{}})
	require.NoError(t, unlockedError)
	disabledLock, disabledError := unlockedComponents.AcquirePublishLock(context.Background())
	require.NoError(t, disabledError)
	require.Nil(t, disabledLock)
}
