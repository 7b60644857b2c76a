package index_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	indexcmd "github.com/temirov/gamerelease/cmd/cli/index"
	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/execshell"
	"github.com/temirov/gamerelease/internal/utils/flags"
)

const testTemplateContentConstant = "<ul>\n  <!-- GAME_LIST_PLACEHOLDER -->\n</ul>\n"

type cleanGitExecutor struct{}

func (cleanGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func newConfiguration(t *testing.T, releasedFiles ...string) dependencies.Configuration {
	t.Helper()
	root := t.TempDir()

	configuration := dependencies.DefaultConfiguration()
	configuration.Storage.Root = filepath.Join(root, "games")
	configuration.Storage.RepositoryRoot = root
	configuration.Index.Template = filepath.Join(root, "index.template.html")
	configuration.Index.Output = filepath.Join(root, "index.html")
	configuration.Index.WatchDebounce = 20 * time.Millisecond

	require.NoError(t, os.MkdirAll(configuration.Storage.Root, 0o755))
	require.NoError(t, os.WriteFile(configuration.Index.Template, []byte(testTemplateContentConstant), 0o644))
	for _, relativePath := range releasedFiles {
		absolutePath := filepath.Join(configuration.Storage.Root, relativePath)
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte("<html></html>"), 0o644))
	}
	return configuration
}

func executeIndex(t *testing.T, builder indexcmd.CommandBuilder, arguments ...string) (string, error) {
	t.Helper()
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return standardOutput.String(), executionError
}

func TestIndexCommandWritesIndex(t *testing.T) {
	configuration := newConfiguration(t,
		"pong/releases/1.0.0/pong.html",
		"pong/releases/1.1.0/index.html",
		"tetris/releases/0.9.0/index.html",
		"drafts/working/index.html",
	)

	output, executionError := executeIndex(t, indexcmd.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           cleanGitExecutor{},
	})
	require.NoError(t, executionError)
	require.Equal(t, "INDEX: "+configuration.Index.Output+" (2 applications)\n", output)

	indexContent, readError := os.ReadFile(configuration.Index.Output)
	require.NoError(t, readError)
	require.Contains(t, string(indexContent), "games/pong/releases/1.1.0/index.html")
	require.Contains(t, string(indexContent), "games/pong/releases/1.0.0/pong.html")
	require.Contains(t, string(indexContent), "games/tetris/releases/0.9.0/index.html")
	require.NotContains(t, string(indexContent), "drafts")
	require.NotContains(t, string(indexContent), "GAME_LIST_PLACEHOLDER")
}

func TestIndexCommandRejectsArguments(t *testing.T) {
	configuration := newConfiguration(t)
	output, executionError := executeIndex(t, indexcmd.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           cleanGitExecutor{},
	}, "unexpected")
	require.Error(t, executionError)
	require.Empty(t, output)
}

func TestIndexCommandMissingTemplateFails(t *testing.T) {
	configuration := newConfiguration(t)
	require.NoError(t, os.Remove(configuration.Index.Template))

	output, executionError := executeIndex(t, indexcmd.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           cleanGitExecutor{},
	})
	require.Error(t, executionError)
	require.Empty(t, output)
	require.NoFileExists(t, configuration.Index.Output)
}

func TestIndexCommandWatchStopsWhenContextEnds(t *testing.T) {
	configuration := newConfiguration(t, "pong/releases/1.0.0/index.html")

	output, executionError := executeIndex(t, indexcmd.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           cleanGitExecutor{},
		SignalContext: func(parent context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(parent, 200*time.Millisecond)
		},
	}, "--watch")
	require.NoError(t, executionError)
	require.Equal(t, "INDEX: "+configuration.Index.Output+" (1 applications)\n", output)
	require.FileExists(t, configuration.Index.Output)
}

func TestIndexCommandWatchAcceptsExplicitValue(t *testing.T) {
	configuration := newConfiguration(t, "pong/releases/1.0.0/index.html")
	toggles := flags.NewToggleRegistry()
	builder := indexcmd.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           cleanGitExecutor{},
		Toggles:               toggles,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(toggles.Normalize([]string{"--watch", "no"}))
	command.SetContext(context.Background())

	require.NoError(t, command.Execute())
	require.Equal(t, "INDEX: "+configuration.Index.Output+" (1 applications)\n", standardOutput.String())
}
