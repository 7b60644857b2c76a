package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant         = "."
	environmentKeySeparatorConstant           = "_"
	sliceSeparatorConstant                    = ","
	embeddedMergeErrorTemplateConstant        = "failed to merge embedded configuration: %w"
	configurationReadErrorTemplateConstant    = "failed to read configuration: %w"
	configurationDecodeErrorTemplateConstant  = "failed to parse configuration: %w"
	environmentBindingErrorTemplateConstant   = "failed to bind environment variable %s: %w"
	configurationTargetMissingMessageConstant = "configuration target must not be nil"
)

// ErrConfigurationTargetMissing indicates LoadConfiguration was called without a decode target.
var ErrConfigurationTargetMissing = errors.New(configurationTargetMissingMessageConstant)

// ConfigurationLoader resolves configuration in layers: embedded defaults, an
// optional configuration file, then environment variables named
// PREFIX_SECTION_KEY. Flags are applied by the caller afterwards.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration reports where the resolved values came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
	// EnvironmentOverrides lists the environment variables that supplied a value, sorted.
	EnvironmentOverrides []string
}

// NewConfigurationLoader creates a loader that looks for configurationName in searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: strings.ToUpper(strings.TrimSpace(environmentPrefix)),
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration sets the document merged underneath every configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfiguration = bytes.Clone(configurationData)
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
}

// EnvironmentVariableName returns the variable consulted for a dotted configuration key.
func (loader *ConfigurationLoader) EnvironmentVariableName(configurationKey string) string {
	variableSuffix := strings.ToUpper(strings.ReplaceAll(configurationKey, configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	if len(loader.environmentPrefix) == 0 {
		return variableSuffix
	}
	return loader.environmentPrefix + environmentKeySeparatorConstant + variableSuffix
}

// LoadConfiguration decodes the layered configuration into targetConfiguration.
// An empty configurationFilePath searches the configured paths; a missing file there is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	if targetConfiguration == nil {
		return LoadedConfiguration{}, ErrConfigurationTargetMissing
	}

	viperInstance := viper.New()
	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if mergeError := loader.mergeEmbedded(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}

	configFileUsed, fileError := loader.mergeFile(viperInstance, configurationFilePath)
	if fileError != nil {
		return LoadedConfiguration{}, fileError
	}

	environmentOverrides, bindError := loader.bindEnvironment(viperInstance)
	if bindError != nil {
		return LoadedConfiguration{}, bindError
	}

	if decodeError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(configurationDecodeHook())); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: configFileUsed, EnvironmentOverrides: environmentOverrides}, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(viperInstance *viper.Viper) error {
	if len(loader.embeddedConfiguration) == 0 {
		return nil
	}

	embeddedType := loader.embeddedConfigurationType
	if len(embeddedType) == 0 {
		embeddedType = loader.configurationType
	}
	viperInstance.SetConfigType(embeddedType)
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
		return fmt.Errorf(embeddedMergeErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) mergeFile(viperInstance *viper.Viper, configurationFilePath string) (string, error) {
	viperInstance.SetConfigType(loader.configurationType)
	if trimmedPath := strings.TrimSpace(configurationFilePath); len(trimmedPath) > 0 {
		viperInstance.SetConfigFile(trimmedPath)
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(readError, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}
	return viperInstance.ConfigFileUsed(), nil
}

// bindEnvironment binds every known key explicitly so that keys only present
// in defaults or the embedded document still honor their variable.
func (loader *ConfigurationLoader) bindEnvironment(viperInstance *viper.Viper) ([]string, error) {
	var environmentOverrides []string
	for _, configurationKey := range viperInstance.AllKeys() {
		variableName := loader.EnvironmentVariableName(configurationKey)
		if bindError := viperInstance.BindEnv(configurationKey, variableName); bindError != nil {
			return nil, fmt.Errorf(environmentBindingErrorTemplateConstant, variableName, bindError)
		}
		if _, isSet := os.LookupEnv(variableName); isSet {
			environmentOverrides = append(environmentOverrides, variableName)
		}
	}
	sort.Strings(environmentOverrides)
	return environmentOverrides, nil
}

// configurationDecodeHook converts environment strings into durations and comma-separated slices.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceSeparatorConstant),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
