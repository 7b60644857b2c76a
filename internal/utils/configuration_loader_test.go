package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gamerelease/internal/utils"
)

const (
	loaderEnvironmentPrefixConstant = "TESTGAMERELEASELOADER"
	loaderConfigurationNameConstant = "config"
	loaderConfigurationTypeConstant = "yaml"
	loaderConfigurationFileConstant = "config.yaml"
	loaderEmbeddedDocumentConstant  = "storage:\n  root: embedded-games\npublish:\n  remote: origin\n"
)

type loaderFixture struct {
	Storage struct {
		Root string `mapstructure:"root"`
	} `mapstructure:"storage"`
	Publish struct {
		Remote      string        `mapstructure:"remote"`
		LockTimeout time.Duration `mapstructure:"lock_timeout"`
	} `mapstructure:"publish"`
	Index struct {
		WatchDebounce time.Duration `mapstructure:"watch_debounce"`
		Ignored       []string      `mapstructure:"ignored"`
	} `mapstructure:"index"`
}

func writeLoaderFile(t *testing.T, directory string, content string) string {
	t.Helper()
	configurationPath := filepath.Join(directory, loaderConfigurationFileConstant)
	require.NoError(t, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestConfigurationLoaderLayerPrecedence(t *testing.T) {
	testCases := []struct {
		name                 string
		fileContent          string
		environment          map[string]string
		expectedRoot         string
		expectedRemote       string
		expectedOverrides    []string
		expectedFileSelected bool
	}{
		{
			name:           "embedded_over_defaults",
			expectedRoot:   "embedded-games",
			expectedRemote: "origin",
		},
		{
			name:                 "file_over_embedded",
			fileContent:          "storage:\n  root: file-games\n",
			expectedRoot:         "file-games",
			expectedRemote:       "origin",
			expectedFileSelected: true,
		},
		{
			name:        "environment_over_file",
			fileContent: "storage:\n  root: file-games\npublish:\n  remote: file-remote\n",
			environment: map[string]string{
				loaderEnvironmentPrefixConstant + "_PUBLISH_REMOTE": "upstream",
			},
			expectedRoot:         "file-games",
			expectedRemote:       "upstream",
			expectedOverrides:    []string{loaderEnvironmentPrefixConstant + "_PUBLISH_REMOTE"},
			expectedFileSelected: true,
		},
		{
			name: "environment_reaches_default_only_keys",
			environment: map[string]string{
				loaderEnvironmentPrefixConstant + "_STORAGE_ROOT":         "env-games",
				loaderEnvironmentPrefixConstant + "_INDEX_WATCH_DEBOUNCE": "2s",
			},
			expectedRoot:   "env-games",
			expectedRemote: "origin",
			expectedOverrides: []string{
				loaderEnvironmentPrefixConstant + "_INDEX_WATCH_DEBOUNCE",
				loaderEnvironmentPrefixConstant + "_STORAGE_ROOT",
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for variableName, variableValue := range testCase.environment {
				t.Setenv(variableName, variableValue)
			}

			configurationDirectory := t.TempDir()
			expectedFile := ""
			if len(testCase.fileContent) > 0 {
				expectedFile = writeLoaderFile(t, configurationDirectory, testCase.fileContent)
			}

			loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{configurationDirectory})
			loader.SetEmbeddedConfiguration([]byte(loaderEmbeddedDocumentConstant), loaderConfigurationTypeConstant)

			defaultValues := map[string]any{
				"storage.root":         "default-games",
				"index.watch_debounce": "500ms",
			}

			var configuration loaderFixture
			metadata, loadError := loader.LoadConfiguration("", defaultValues, &configuration)
			require.NoError(t, loadError)
			require.Equal(t, testCase.expectedRoot, configuration.Storage.Root)
			require.Equal(t, testCase.expectedRemote, configuration.Publish.Remote)
			require.Equal(t, testCase.expectedOverrides, metadata.EnvironmentOverrides)
			if testCase.expectedFileSelected {
				require.Equal(t, expectedFile, metadata.ConfigFileUsed)
			} else {
				require.Empty(t, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderSearchesPathsInOrder(t *testing.T) {
	workingDirectory := t.TempDir()
	userDirectory := t.TempDir()
	userFile := writeLoaderFile(t, userDirectory, "storage:\n  root: user-games\n")

	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{workingDirectory, userDirectory})
	var configuration loaderFixture
	metadata, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(t, loadError)
	require.Equal(t, userFile, metadata.ConfigFileUsed)
	require.Equal(t, "user-games", configuration.Storage.Root)

	workingFile := writeLoaderFile(t, workingDirectory, "storage:\n  root: working-games\n")
	metadata, loadError = loader.LoadConfiguration("", nil, &configuration)
	require.NoError(t, loadError)
	require.Equal(t, workingFile, metadata.ConfigFileUsed)
	require.Equal(t, "working-games", configuration.Storage.Root)
}

func TestConfigurationLoaderDecodesEnvironmentStrings(t *testing.T) {
	t.Setenv(loaderEnvironmentPrefixConstant+"_INDEX_IGNORED", "drafts,archive")
	t.Setenv(loaderEnvironmentPrefixConstant+"_PUBLISH_LOCK_TIMEOUT", "5s")

	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{t.TempDir()})
	defaultValues := map[string]any{
		"index.ignored":        []string{},
		"publish.lock_timeout": "0s",
	}

	var configuration loaderFixture
	_, loadError := loader.LoadConfiguration("", defaultValues, &configuration)
	require.NoError(t, loadError)
	require.Equal(t, []string{"drafts", "archive"}, configuration.Index.Ignored)
	require.Equal(t, 5*time.Second, configuration.Publish.LockTimeout)
}

func TestConfigurationLoaderErrors(t *testing.T) {
	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, nil)

	t.Run("missing_explicit_file", func(t *testing.T) {
		var configuration loaderFixture
		_, loadError := loader.LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"), nil, &configuration)
		require.ErrorContains(t, loadError, "failed to read configuration")
	})

	t.Run("malformed_embedded_document", func(t *testing.T) {
		brokenLoader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, nil)
		brokenLoader.SetEmbeddedConfiguration([]byte("storage: [unterminated"), loaderConfigurationTypeConstant)
		var configuration loaderFixture
		_, loadError := brokenLoader.LoadConfiguration("", nil, &configuration)
		require.ErrorContains(t, loadError, "failed to merge embedded configuration")
	})

	t.Run("nil_target", func(t *testing.T) {
		_, loadError := loader.LoadConfiguration("", nil, nil)
		require.ErrorIs(t, loadError, utils.ErrConfigurationTargetMissing)
	})
}

func TestConfigurationLoaderEnvironmentVariableName(t *testing.T) {
	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, " gamerelease ", nil)
	require.Equal(t, "GAMERELEASE_INDEX_WATCH_DEBOUNCE", loader.EnvironmentVariableName("index.watch_debounce"))

	unprefixedLoader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, "", nil)
	require.Equal(t, "STORAGE_ROOT", unprefixedLoader.EnvironmentVariableName("storage.root"))
}
