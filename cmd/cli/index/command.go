package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/gitrepo"
	indexgen "github.com/temirov/gamerelease/internal/index"
	"github.com/temirov/gamerelease/internal/utils/flags"
)

const (
	commandUseConstant              = "index"
	commandShortDescriptionConstant = "Regenerate the index page from the published releases"
	commandLongDescriptionConstant  = "index scans every application under the storage root, renders the application list into the index template and writes the index page. With --watch it keeps regenerating until interrupted."
	watchFlagNameConstant           = "watch"
	watchFlagUsageConstant          = "Regenerate whenever the storage tree or the template changes"
	indexOutputTemplateConstant     = "INDEX: %s (%d applications)\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the release configuration for the invocation.
type ConfigurationProvider func() dependencies.Configuration

// CommandBuilder assembles the index command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           gitrepo.GitExecutor
	FileSystem            dependencies.FileSystem
	Toggles               *flags.ToggleRegistry
	// SignalContext derives the watch context; defaults to cancelling on SIGINT and SIGTERM.
	SignalContext func(parent context.Context) (context.Context, context.CancelFunc)
}

// Build constructs the index command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         builder.run,
	}

	var watch bool
	toggles := builder.Toggles
	if toggles == nil {
		toggles = flags.NewToggleRegistry()
	}
	toggles.Add(command.Flags(), &watch, watchFlagNameConstant, false, watchFlagUsageConstant)
	flags.BindStorageRootFlag(command, flags.StorageRootFlagValues{})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	watch, _ := command.Flags().GetBool(watchFlagNameConstant)
	storageRoot, _ := command.Flags().GetString(flags.StorageRootFlagName)

	configuration := dependencies.DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if trimmedRoot := strings.TrimSpace(storageRoot); len(trimmedRoot) > 0 {
		configuration.Storage.Root = trimmedRoot
	}

	components, assembleError := dependencies.Assemble(configuration, dependencies.Inputs{
		Logger:      resolveLogger(builder.LoggerProvider),
		GitExecutor: builder.GitExecutor,
		FileSystem:  builder.FileSystem,
	})
	if assembleError != nil {
		return assembleError
	}

	reporter := reportingRegenerator{generator: components.Generator, output: command.OutOrStdout()}

	if !watch {
		_, generateError := reporter.Generate(command.Context())
		return generateError
	}

	watcher, watcherError := components.NewWatcher(&reporter)
	if watcherError != nil {
		return watcherError
	}

	signalContext := builder.SignalContext
	if signalContext == nil {
		signalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		}
	}
	watchContext, cancel := signalContext(command.Context())
	defer cancel()

	return watcher.Run(watchContext)
}

// reportingRegenerator prints a summary line after every generation that changed the page.
type reportingRegenerator struct {
	generator indexgen.Regenerator
	output    io.Writer
	reported  bool
}

func (reporter *reportingRegenerator) Generate(executionContext context.Context) (indexgen.Result, error) {
	result, generateError := reporter.generator.Generate(executionContext)
	if generateError != nil {
		return result, generateError
	}
	if result.Changed || !reporter.reported {
		fmt.Fprintf(reporter.output, indexOutputTemplateConstant, result.OutputPath, len(result.RenderedApplications))
		reporter.reported = true
	}
	return result, nil
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
