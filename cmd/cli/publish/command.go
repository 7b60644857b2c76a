package publish

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/gitrepo"
	"github.com/temirov/gamerelease/internal/releases"
	"github.com/temirov/gamerelease/internal/utils/flags"
)

const (
	commandUseConstant                  = "publish <application> <version>"
	commandShortDescriptionConstant     = "Publish a versioned snapshot of an application"
	commandLongDescriptionConstant      = "publish copies {root}/<application>/working into {root}/<application>/releases/<version>, tags the release as <application>-v<version>, pushes the tag and regenerates the index page."
	messageFlagNameConstant             = "message"
	messageFlagUsageConstant            = "Create an annotated tag with this message"
	skipIndexFlagNameConstant           = "skip-index"
	skipIndexFlagUsageConstant          = "Do not regenerate the index page after publishing"
	releasedOutputTemplateConstant      = "RELEASED: %s %s -> %s\n"
	dryRunOutputTemplateConstant        = "DRY-RUN: %s %s -> %s (%s, push to %s)\n"
	indexWarningOutputTemplateConstant  = "WARNING: index not regenerated: %v\n"
	lockReleaseFailedLogMessageConstant = "unable to release publish lock"
	expectedArgumentCountConstant       = 2
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the release configuration for the invocation.
type ConfigurationProvider func() dependencies.Configuration

// CommandBuilder assembles the publish command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   dependencies.FileSystem
	Toggles                      *flags.ToggleRegistry
}

// Build constructs the publish command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.ExactArgs(expectedArgumentCountConstant),
		SilenceUsage: true,
		RunE:         builder.run,
	}

	var dryRun bool
	var skipIndex bool
	toggles := builder.toggleRegistry()
	toggles.Add(command.Flags(), &dryRun, flags.DryRunFlagName, false, flags.DryRunFlagUsage)
	toggles.Add(command.Flags(), &skipIndex, skipIndexFlagNameConstant, false, skipIndexFlagUsageConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagUsageConstant)
	flags.EnsureRemoteFlag(command, "", "")
	flags.BindStorageRootFlag(command, flags.StorageRootFlagValues{})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	dryRun, _ := command.Flags().GetBool(flags.DryRunFlagName)
	skipIndex, _ := command.Flags().GetBool(skipIndexFlagNameConstant)
	tagMessage, _ := command.Flags().GetString(messageFlagNameConstant)
	remoteName, _ := command.Flags().GetString(flags.RemoteFlagName)
	storageRoot, _ := command.Flags().GetString(flags.StorageRootFlagName)

	configuration := builder.resolveConfiguration()
	if trimmedRoot := strings.TrimSpace(storageRoot); len(trimmedRoot) > 0 {
		configuration.Storage.Root = trimmedRoot
	}

	logger := resolveLogger(builder.LoggerProvider)
	components, assembleError := dependencies.Assemble(configuration, dependencies.Inputs{
		Logger:               logger,
		ConsoleLogger:        resolveLogger(builder.ConsoleLoggerProvider),
		HumanReadableLogging: builder.humanReadableLoggingEnabled(),
		GitExecutor:          builder.GitExecutor,
		FileSystem:           builder.FileSystem,
	})
	if assembleError != nil {
		return assembleError
	}

	if !dryRun {
		lock, lockError := components.AcquirePublishLock(command.Context())
		if lockError != nil {
			return lockError
		}
		defer func() {
			if releaseError := lock.Release(); releaseError != nil {
				logger.Warn(lockReleaseFailedLogMessageConstant, zap.Error(releaseError))
			}
		}()
	}

	publisher, publisherError := components.NewPublisher(components.Configuration.Publish.RegenerateIndex)
	if publisherError != nil {
		return publisherError
	}

	result, publishError := publisher.Publish(command.Context(), releases.Options{
		ApplicationName: arguments[0],
		Version:         arguments[1],
		RemoteName:      remoteName,
		TagMessage:      tagMessage,
		DryRun:          dryRun,
		SkipIndex:       skipIndex,
	})
	if publishError != nil {
		return publishError
	}

	output := command.OutOrStdout()
	if result.DryRun {
		fmt.Fprintf(output, dryRunOutputTemplateConstant, result.ApplicationName, result.Version.Text(), result.TagName, result.ReleasePath, result.RemoteName)
		return nil
	}

	fmt.Fprintf(output, releasedOutputTemplateConstant, result.ApplicationName, result.Version.Text(), result.TagName)
	if result.IndexError != nil {
		fmt.Fprintf(command.ErrOrStderr(), indexWarningOutputTemplateConstant, result.IndexError)
	}
	return nil
}

func (builder *CommandBuilder) toggleRegistry() *flags.ToggleRegistry {
	if builder.Toggles == nil {
		return flags.NewToggleRegistry()
	}
	return builder.Toggles
}

func (builder *CommandBuilder) resolveConfiguration() dependencies.Configuration {
	if builder.ConfigurationProvider == nil {
		return dependencies.DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
