package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gamerelease/internal/dependencies"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
)

func newTestApplication(t *testing.T) (*Application, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())

	application := NewApplication()
	standardOutput := &bytes.Buffer{}
	application.rootCommand.SetOut(standardOutput)
	application.rootCommand.SetErr(&bytes.Buffer{})
	return application, standardOutput
}

func writeTestConfiguration(t *testing.T, storageRoot string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(storageRoot, 0o755))
	configurationPath := filepath.Join(t.TempDir(), testConfigurationFileNameConstant)
	configurationContent := []byte("common:\n  log_level: error\nstorage:\n  root: " + storageRoot + "\nindex:\n  watch_debounce: 2s\npublish:\n  remote: upstream\n")
	require.NoError(t, os.WriteFile(configurationPath, configurationContent, 0o600))
	return configurationPath
}

func TestEmbeddedDefaultsMatchDependencyDefaults(t *testing.T) {
	configurationData, configurationType := EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(t, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	var configuration ApplicationConfiguration
	require.NoError(t, viperInstance.Unmarshal(&configuration))

	require.Equal(t, dependencies.DefaultConfiguration(), configuration.Release)
	require.Equal(t, "info", configuration.Common.LogLevel)
	require.Equal(t, "structured", configuration.Common.LogFormat)
	require.Empty(t, configuration.Common.LogFile)
	require.Equal(t, defaultLogMaxSizeMegabytesConstant, configuration.Common.LogMaxSizeMB)
}

func TestApplicationConfigurationPrecedence(t *testing.T) {
	testCases := []struct {
		name             string
		environment      map[string]string
		arguments        []string
		expectedLevel    string
		expectedRemote   string
		expectedDebounce time.Duration
	}{
		{
			name:             "file_over_defaults",
			expectedLevel:    "error",
			expectedRemote:   "upstream",
			expectedDebounce: 2 * time.Second,
		},
		{
			name:             "environment_over_file",
			environment:      map[string]string{"GAMERELEASE_PUBLISH_REMOTE": "mirror", "GAMERELEASE_INDEX_WATCH_DEBOUNCE": "750ms"},
			expectedLevel:    "error",
			expectedRemote:   "mirror",
			expectedDebounce: 750 * time.Millisecond,
		},
		{
			name:             "flag_over_environment",
			environment:      map[string]string{"GAMERELEASE_COMMON_LOG_LEVEL": "warn"},
			arguments:        []string{"--log-level", "debug"},
			expectedLevel:    "debug",
			expectedRemote:   "upstream",
			expectedDebounce: 2 * time.Second,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for environmentKey, environmentValue := range testCase.environment {
				t.Setenv(environmentKey, environmentValue)
			}
			application, standardOutput := newTestApplication(t)
			storageRoot := filepath.Join(t.TempDir(), "games")
			configurationPath := writeTestConfiguration(t, storageRoot)

			arguments := append([]string{"apps", "--config", configurationPath}, testCase.arguments...)
			require.NoError(t, application.ExecuteArguments(arguments))
			require.Equal(t, "[]\n", standardOutput.String())

			require.Equal(t, testCase.expectedLevel, application.configuration.Common.LogLevel)
			require.Equal(t, storageRoot, application.configuration.Release.Storage.Root)
			require.Equal(t, testCase.expectedRemote, application.configuration.Release.Publish.Remote)
			require.Equal(t, testCase.expectedDebounce, application.configuration.Release.Index.WatchDebounce)
			require.Equal(t, configurationPath, application.configurationMetadata.ConfigFileUsed)
		})
	}
}

func TestApplicationUsesEmbeddedDefaultsWithoutConfigurationFile(t *testing.T) {
	application, standardOutput := newTestApplication(t)
	require.NoError(t, os.MkdirAll("games", 0o755))

	require.NoError(t, application.ExecuteArguments([]string{"apps"}))
	require.Equal(t, "[]\n", standardOutput.String())
	require.Equal(t, dependencies.DefaultConfiguration(), application.configuration.Release)
	require.Empty(t, application.configurationMetadata.ConfigFileUsed)
}

func TestApplicationRejectsUnknownLogFormat(t *testing.T) {
	application, _ := newTestApplication(t)

	executionError := application.ExecuteArguments([]string{"apps", "--log-format", "xml"})
	require.ErrorContains(t, executionError, "unable to create logger")
}

func TestApplicationHumanReadableLoggingFollowsFormat(t *testing.T) {
	application := &Application{configuration: ApplicationConfiguration{Common: ApplicationCommonConfiguration{LogFormat: " Console "}}}
	require.True(t, application.humanReadableLoggingEnabled())

	application.configuration.Common.LogFormat = "structured"
	require.False(t, application.humanReadableLoggingEnabled())
}

func TestApplicationRegistersReleaseCommands(t *testing.T) {
	application := NewApplication()

	registered := make([]string, 0)
	for _, subcommand := range application.rootCommand.Commands() {
		registered = append(registered, subcommand.Name())
	}
	require.Subset(t, registered, []string{"publish", "index", "apps"})
}

func TestApplicationVersionFlagPrintsVersion(t *testing.T) {
	application, standardOutput := newTestApplication(t)
	application.versionResolver = func() string {
		return "v2.0.0"
	}

	require.NoError(t, application.ExecuteArguments([]string{"--version"}))
	require.Equal(t, "gamerelease version: v2.0.0\n", standardOutput.String())
}

func TestApplicationLogFileReceivesDiagnostics(t *testing.T) {
	application, _ := newTestApplication(t)
	require.NoError(t, os.MkdirAll("games", 0o755))
	logFilePath := filepath.Join(t.TempDir(), "gamerelease.log")
	t.Setenv("GAMERELEASE_COMMON_LOG_FILE", logFilePath)

	require.NoError(t, application.ExecuteArguments([]string{"apps", "--log-level", "debug"}))

	logContent, readError := os.ReadFile(logFilePath)
	require.NoError(t, readError)
	require.Contains(t, string(logContent), configurationInitializedMessageConstant)
}

func TestApplicationOwnsToggleRegistry(t *testing.T) {
	application := NewApplication()
	otherApplication := NewApplication()

	require.Equal(t,
		[]string{"publish", "--dry-run=yes", "snake", "1.0.0", "--skip-index=no"},
		application.toggles.Normalize([]string{"publish", "--dry-run", "yes", "snake", "1.0.0", "--skip-index", "no"}),
	)
	require.Equal(t, []string{"index", "--watch=off"}, application.toggles.Normalize([]string{"index", "--watch", "off"}))
	require.NotSame(t, application.toggles, otherApplication.toggles)
}

func TestApplicationLogFlagUsageListsChoices(t *testing.T) {
	application := NewApplication()
	persistentFlags := application.rootCommand.PersistentFlags()

	require.Contains(t, persistentFlags.Lookup(logLevelFlagNameConstant).Usage, "<debug|INFO|warn|error>")
	require.Contains(t, persistentFlags.Lookup(logFormatFlagNameConstant).Usage, "<STRUCTURED|console>")
}

func TestEmbeddedDefaultConfigurationReturnsCopy(t *testing.T) {
	firstDocument, _ := EmbeddedDefaultConfiguration()
	require.NotEmpty(t, firstDocument)
	firstDocument[0] = '#'

	secondDocument, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(t, "yaml", configurationType)
	require.NotEqual(t, byte('#'), secondDocument[0])
}
