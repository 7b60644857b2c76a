package apps_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gamerelease/cmd/cli/apps"
	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/execshell"
)

type statusGitExecutor struct {
	dirtyPathSuffix string
}

func (executor statusGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	lastArgument := details.Arguments[len(details.Arguments)-1]
	if len(executor.dirtyPathSuffix) > 0 && strings.HasSuffix(lastArgument, executor.dirtyPathSuffix) {
		return execshell.ExecutionResult{StandardOutput: " M " + lastArgument + "/index.html\n"}, nil
	}
	return execshell.ExecutionResult{}, nil
}

type listedApplication struct {
	Name                  string   `json:"name" yaml:"name"`
	HasUncommittedChanges bool     `json:"has_uncommitted_changes" yaml:"has_uncommitted_changes"`
	LatestVersion         *string  `json:"latest_version" yaml:"latest_version"`
	AllVersions           []string `json:"all_versions" yaml:"all_versions"`
	EntryPoint            *string  `json:"entry_point" yaml:"entry_point"`
}

func newConfiguration(t *testing.T) dependencies.Configuration {
	t.Helper()
	root := t.TempDir()
	configuration := dependencies.DefaultConfiguration()
	configuration.Storage.Root = filepath.Join(root, "games")
	configuration.Storage.RepositoryRoot = root

	for _, relativePath := range []string{
		"breakout/working/breakout.html",
		"breakout/releases/1.10.0/index.html",
		"breakout/releases/1.9.0/index.html",
		"breakout/releases/latest/index.html",
		"snake/working/index.html",
	} {
		absolutePath := filepath.Join(configuration.Storage.Root, relativePath)
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte("<html></html>"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(configuration.Storage.Root, "snake", "releases"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(configuration.Storage.Root, "unreleased", "working"), 0o755))
	return configuration
}

func executeApps(t *testing.T, configuration dependencies.Configuration, arguments ...string) (string, error) {
	t.Helper()
	builder := apps.CommandBuilder{
		ConfigurationProvider: func() dependencies.Configuration { return configuration },
		GitExecutor:           statusGitExecutor{dirtyPathSuffix: filepath.Join("snake", "working")},
	}
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

func TestAppsCommandFormats(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		decode    func([]byte, any) error
	}{
		{name: "json_default", arguments: nil, decode: json.Unmarshal},
		{name: "yaml", arguments: []string{"--format", "yaml"}, decode: yaml.Unmarshal},
		{name: "uppercase_json", arguments: []string{"--format", "JSON"}, decode: json.Unmarshal},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			output, executionError := executeApps(t, newConfiguration(t), testCase.arguments...)
			require.NoError(t, executionError)

			var listed []listedApplication
			require.NoError(t, testCase.decode([]byte(output), &listed))
			require.Len(t, listed, 2)

			require.Equal(t, "breakout", listed[0].Name)
			require.False(t, listed[0].HasUncommittedChanges)
			require.NotNil(t, listed[0].LatestVersion)
			require.Equal(t, "1.10.0", *listed[0].LatestVersion)
			require.Equal(t, []string{"1.10.0", "1.9.0"}, listed[0].AllVersions)
			require.NotNil(t, listed[0].EntryPoint)
			require.Equal(t, "breakout.html", *listed[0].EntryPoint)

			require.Equal(t, "snake", listed[1].Name)
			require.True(t, listed[1].HasUncommittedChanges)
			require.Nil(t, listed[1].LatestVersion)
			require.Empty(t, listed[1].AllVersions)
			require.NotNil(t, listed[1].EntryPoint)
			require.Equal(t, "index.html", *listed[1].EntryPoint)
		})
	}
}

func TestAppsCommandEmptyStorageRendersEmptyList(t *testing.T) {
	configuration := dependencies.DefaultConfiguration()
	configuration.Storage.Root = t.TempDir()
	configuration.Storage.RepositoryRoot = configuration.Storage.Root

	output, executionError := executeApps(t, configuration)
	require.NoError(t, executionError)
	require.Equal(t, "[]\n", output)
}

func TestAppsCommandRejectsUnknownFormat(t *testing.T) {
	output, executionError := executeApps(t, newConfiguration(t), "--format", "toml")
	require.ErrorContains(t, executionError, "unsupported output format")
	require.Empty(t, output)
}
