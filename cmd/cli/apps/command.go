package apps

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gamerelease/internal/dependencies"
	"github.com/temirov/gamerelease/internal/gitrepo"
	"github.com/temirov/gamerelease/internal/registry"
	"github.com/temirov/gamerelease/internal/utils/flags"
)

const (
	commandUseConstant                = "apps"
	commandShortDescriptionConstant   = "List applications with their published versions"
	commandLongDescriptionConstant    = "apps reports every application under the storage root with its latest and all published versions, its working entry point and whether its working tree has uncommitted changes."
	formatFlagNameConstant            = "format"
	formatFlagDescriptionConstant     = "Output format."
	formatJSONConstant                = "json"
	formatYAMLConstant                = "yaml"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
	unsupportedFormatTemplateConstant = "unsupported output format: %w"
)

var outputFormatChoice = flags.Choice{Default: formatJSONConstant, Values: []string{formatJSONConstant, formatYAMLConstant}}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the release configuration for the invocation.
type ConfigurationProvider func() dependencies.Configuration

// CommandBuilder assembles the apps command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           gitrepo.GitExecutor
	FileSystem            dependencies.FileSystem
}

// Build constructs the apps command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         builder.run,
	}

	command.Flags().String(
		formatFlagNameConstant,
		formatJSONConstant,
		outputFormatChoice.Usage(formatFlagDescriptionConstant),
	)
	flags.BindStorageRootFlag(command, flags.StorageRootFlagValues{})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	format, _ := command.Flags().GetString(formatFlagNameConstant)
	normalizedFormat, formatError := outputFormatChoice.Resolve(format)
	if formatError != nil {
		return fmt.Errorf(unsupportedFormatTemplateConstant, formatError)
	}

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

	entries, listError := components.Registry.ListApplications(command.Context())
	if listError != nil {
		return listError
	}
	if entries == nil {
		entries = []registry.Entry{}
	}

	if normalizedFormat == formatYAMLConstant {
		return writeYAML(command.OutOrStdout(), entries)
	}
	return writeJSON(command.OutOrStdout(), entries)
}

func writeJSON(output io.Writer, entries []registry.Entry) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(entries)
}

func writeYAML(output io.Writer, entries []registry.Entry) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(entries); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
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
