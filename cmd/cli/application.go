package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	appscmd "github.com/temirov/gamerelease/cmd/cli/apps"
	indexcmd "github.com/temirov/gamerelease/cmd/cli/index"
	publishcmd "github.com/temirov/gamerelease/cmd/cli/publish"
	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/storage"
	"github.com/temirov/gamerelease/internal/utils"
	"github.com/temirov/gamerelease/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gamerelease"
	applicationShortDescriptionConstant     = "Publish versioned game releases and maintain the site index"
	applicationLongDescriptionConstant      = "gamerelease snapshots each application's working tree into an immutable numbered release, records it as a git tag, and regenerates the index page linking every published version."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	commonLogMaxSizeConfigKeyConstant       = commonConfigurationKeyConstant + ".log_max_size_mb"
	commonLogMaxBackupsConfigKeyConstant    = commonConfigurationKeyConstant + ".log_max_backups"
	commonLogMaxAgeConfigKeyConstant        = commonConfigurationKeyConstant + ".log_max_age_days"
	environmentPrefixConstant               = "GAMERELEASE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationStorageRootFieldConstant   = "storage_root"
	configurationEnvironmentFieldConstant   = "environment_overrides"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "gamerelease CLI executed"
	rootCommandDebugMessageConstant         = "gamerelease CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryNameConstant  = "gamerelease"
	defaultLogMaxSizeMegabytesConstant      = 10
	defaultLogMaxBackupsConstant            = 3
	defaultLogMaxAgeDaysConstant            = 28
	developmentVersionConstant              = "dev"
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
)

var (
	logLevelChoice = flags.Choice{
		Default: string(utils.LogLevelInfo),
		Values:  []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)},
	}
	logFormatChoice = flags.Choice{
		Default: string(utils.LogFormatStructured),
		Values:  []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)},
	}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Release dependencies.Configuration     `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	consoleLogger         *zap.Logger
	pathResolver          *storage.PathResolver
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionResolver       func() string
	toggles               *flags.ToggleRegistry
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, userConfigurationError := os.UserConfigDir(); userConfigurationError == nil {
		searchPaths = append(searchPaths, userConfigurationDirectory+string(os.PathSeparator)+userConfigurationDirectoryNameConstant)
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		searchPaths,
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		consoleLogger:       zap.NewNop(),
		pathResolver:        storage.NewPathResolver(),
		versionResolver:     resolveModuleVersion,
		toggles:             flags.NewToggleRegistry(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelChoice.Usage(logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatChoice.Usage(logFormatFlagUsageConstant))

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	consoleLoggerProvider := func() *zap.Logger {
		return application.consoleLogger
	}
	configurationProvider := func() dependencies.Configuration {
		return application.configuration.Release
	}

	publishBuilder := publishcmd.CommandBuilder{
		LoggerProvider:               loggerProvider,
		ConsoleLoggerProvider:        consoleLoggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        configurationProvider,
		Toggles:                      application.toggles,
	}
	publishCommand, publishBuildError := publishBuilder.Build()
	if publishBuildError == nil {
		cobraCommand.AddCommand(publishCommand)
	}

	indexBuilder := indexcmd.CommandBuilder{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: configurationProvider,
		Toggles:               application.toggles,
	}
	indexCommand, indexBuildError := indexBuilder.Build()
	if indexBuildError == nil {
		cobraCommand.AddCommand(indexCommand)
	}

	appsBuilder := appscmd.CommandBuilder{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: configurationProvider,
	}
	appsCommand, appsBuildError := appsBuilder.Build()
	if appsBuildError == nil {
		cobraCommand.AddCommand(appsCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteArguments(os.Args[1:])
}

// ExecuteArguments runs the command hierarchy against the provided arguments.
func (application *Application) ExecuteArguments(arguments []string) error {
	application.rootCommand.Version = application.versionResolver()
	application.rootCommand.SetArgs(application.toggles.Normalize(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:      string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:     string(utils.LogFormatStructured),
		commonLogFileConfigKeyConstant:       "",
		commonLogMaxSizeConfigKeyConstant:    defaultLogMaxSizeMegabytesConstant,
		commonLogMaxBackupsConfigKeyConstant: defaultLogMaxBackupsConstant,
		commonLogMaxAgeConfigKeyConstant:     defaultLogMaxAgeDaysConstant,
	}
	for configurationKey, configurationValue := range dependencies.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.configuration.Release = application.configuration.Release.Sanitize()

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logFilePath := ""
	if trimmedLogFile := strings.TrimSpace(application.configuration.Common.LogFile); len(trimmedLogFile) > 0 {
		logFilePath = application.pathResolver.Expand(trimmedLogFile)
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		utils.LogFileConfiguration{
			Path:       logFilePath,
			MaxSizeMB:  application.configuration.Common.LogMaxSizeMB,
			MaxBackups: application.configuration.Common.LogMaxBackups,
			MaxAgeDays: application.configuration.Common.LogMaxAgeDays,
		},
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationStorageRootFieldConstant, application.configuration.Release.Storage.Root),
		zap.Strings(configurationEnvironmentFieldConstant, application.configurationMetadata.EnvironmentOverrides),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	if application.consoleLogger != application.logger {
		return application.syncLoggerInstance(application.consoleLogger)
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	if utils.IsUnsupportedSyncError(syncError) {
		return nil
	}
	return syncError
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func resolveModuleVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == "(devel)" {
		return developmentVersionConstant
	}
	return moduleVersion
}
