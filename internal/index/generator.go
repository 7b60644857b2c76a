package index

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/failures"
	"github.com/temirov/gamerelease/internal/registry"
)

const (
	generateOperationConstant                   = "generate index"
	templateMissingMessageConstant              = "template file not found"
	templateUnreadableMessageConstant           = "template file could not be read"
	outputUnwritableMessageConstant             = "index output could not be written"
	outputRequiredMessageConstant               = "index output path required"
	templateRequiredMessageConstant             = "index template path required"
	indexUnchangedLogMessageConstant            = "index unchanged"
	indexWrittenLogMessageConstant              = "index written"
	logFieldOutputConstant                      = "output"
	logFieldApplicationsCountConstant           = "applications"
	logFieldSkippedApplicationsConstant         = "skipped_applications"
	generatorDependenciesMissingMessageConstant = "index generator dependencies not configured"
)

// ErrGeneratorDependenciesMissing indicates the generator was constructed without a lister, renderer, or file system.
var ErrGeneratorDependenciesMissing = errors.New(generatorDependenciesMissingMessageConstant)

// ApplicationLister enumerates applications and their versions.
type ApplicationLister interface {
	ListApplications(executionContext context.Context) ([]registry.Entry, error)
}

// FileStore reads the template and writes the output page.
type FileStore interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// GeneratorConfiguration names the template and the page it produces.
type GeneratorConfiguration struct {
	TemplatePath string
	OutputPath   string
}

// GeneratorDependencies holds the generator collaborators.
type GeneratorDependencies struct {
	Logger     *zap.Logger
	Lister     ApplicationLister
	Renderer   *Renderer
	FileSystem FileStore
}

// Result summarizes one generation run.
type Result struct {
	OutputPath           string
	RenderedApplications []string
	SkippedApplications  []string
	PlaceholderFound     bool
	Changed              bool
}

// Generator reads the template, scans the registry, renders and writes the index page.
type Generator struct {
	configuration GeneratorConfiguration
	logger        *zap.Logger
	lister        ApplicationLister
	renderer      *Renderer
	fileSystem    FileStore
}

// NewGenerator constructs a Generator.
func NewGenerator(configuration GeneratorConfiguration, dependencies GeneratorDependencies) (*Generator, error) {
	if dependencies.Lister == nil || dependencies.Renderer == nil || dependencies.FileSystem == nil {
		return nil, ErrGeneratorDependenciesMissing
	}
	if len(configuration.TemplatePath) == 0 {
		return nil, failures.New(failures.KindConfiguration, generateOperationConstant, "", templateRequiredMessageConstant)
	}
	if len(configuration.OutputPath) == 0 {
		return nil, failures.New(failures.KindConfiguration, generateOperationConstant, "", outputRequiredMessageConstant)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		configuration: configuration,
		logger:        logger,
		lister:        dependencies.Lister,
		renderer:      dependencies.Renderer,
		fileSystem:    dependencies.FileSystem,
	}, nil
}

// Configuration returns the template and output paths.
func (generator *Generator) Configuration() GeneratorConfiguration {
	return generator.configuration
}

// Generate performs one full regeneration. The output file is rewritten only
// when its content would change, so repeated runs over unchanged state leave
// it byte-identical and untouched.
func (generator *Generator) Generate(executionContext context.Context) (Result, error) {
	templatePath := generator.configuration.TemplatePath
	outputPath := generator.configuration.OutputPath

	if !generator.fileSystem.Exists(templatePath) {
		return Result{}, failures.New(failures.KindConfiguration, generateOperationConstant, templatePath, templateMissingMessageConstant)
	}
	templateContent, readError := generator.fileSystem.ReadFile(templatePath)
	if readError != nil {
		return Result{}, failures.Wrap(failures.KindConfiguration, generateOperationConstant, templatePath, templateUnreadableMessageConstant, readError)
	}

	entries, listError := generator.lister.ListApplications(executionContext)
	if listError != nil {
		return Result{}, listError
	}

	rendering := generator.renderer.Render(string(templateContent), entries)
	result := Result{
		OutputPath:           outputPath,
		RenderedApplications: rendering.RenderedApplications,
		SkippedApplications:  rendering.SkippedApplications,
		PlaceholderFound:     rendering.PlaceholderFound,
	}

	rendered := []byte(rendering.Text)
	if generator.fileSystem.Exists(outputPath) {
		if existing, existingError := generator.fileSystem.ReadFile(outputPath); existingError == nil && bytes.Equal(existing, rendered) {
			generator.logger.Debug(indexUnchangedLogMessageConstant, zap.String(logFieldOutputConstant, outputPath))
			return result, nil
		}
	}

	if writeError := generator.fileSystem.WriteFile(outputPath, rendered); writeError != nil {
		return Result{}, failures.Wrap(failures.KindConfiguration, generateOperationConstant, outputPath, outputUnwritableMessageConstant, writeError)
	}
	result.Changed = true

	generator.logger.Info(
		indexWrittenLogMessageConstant,
		zap.String(logFieldOutputConstant, outputPath),
		zap.Int(logFieldApplicationsCountConstant, len(result.RenderedApplications)),
		zap.Strings(logFieldSkippedApplicationsConstant, result.SkippedApplications),
	)
	return result, nil
}
