package dependencies

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/failures"
	"github.com/temirov/gamerelease/internal/gitrepo"
	"github.com/temirov/gamerelease/internal/index"
	"github.com/temirov/gamerelease/internal/registry"
	"github.com/temirov/gamerelease/internal/releaselock"
	"github.com/temirov/gamerelease/internal/releases"
	"github.com/temirov/gamerelease/internal/storage"
)

const (
	assembleOperationConstant             = "assemble components"
	pathResolutionMessageConstant         = "path could not be resolved"
	logFieldStorageRootConstant           = "storage_root"
	logFieldRepositoryRootConstant        = "repository_root"
	logFieldTemplateConstant              = "template"
	logFieldOutputConstant                = "output"
	componentsAssembledLogMessageConstant = "release components assembled"
)

// Inputs carries the runtime collaborators used to assemble components.
// Zero values select OS-backed defaults.
type Inputs struct {
	Logger               *zap.Logger
	ConsoleLogger        *zap.Logger
	HumanReadableLogging bool
	GitExecutor          gitrepo.GitExecutor
	FileSystem           FileSystem
	PathResolver         *storage.PathResolver
}

// Components are the wired registry, index and source-control objects for one invocation.
// Configuration holds absolute paths.
type Components struct {
	Configuration Configuration
	Layout        storage.Layout
	Logger        *zap.Logger
	FileSystem    FileSystem
	Repository    *gitrepo.Repository
	Registry      *registry.Registry
	Renderer      *index.Renderer
	Generator     *index.Generator
}

// Assemble resolves configured paths and constructs the shared components.
func Assemble(configuration Configuration, inputs Inputs) (*Components, error) {
	logger := inputs.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	consoleLogger := inputs.ConsoleLogger
	if consoleLogger == nil {
		consoleLogger = logger
	}
	pathResolver := inputs.PathResolver
	if pathResolver == nil {
		pathResolver = storage.NewPathResolver()
	}

	resolved, resolutionError := resolvePaths(configuration.Sanitize(), pathResolver)
	if resolutionError != nil {
		return nil, resolutionError
	}

	layout, layoutError := storage.NewLayout(resolved.Storage.Root, resolved.Storage.WorkingDirectory, resolved.Storage.ReleasesDirectory)
	if layoutError != nil {
		return nil, layoutError
	}

	fileSystem := ResolveFileSystem(inputs.FileSystem)

	gitExecutor, executorError := ResolveGitExecutor(inputs.GitExecutor, logger, consoleLogger, inputs.HumanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repository, repositoryError := gitrepo.NewRepository(gitExecutor, resolved.Storage.RepositoryRoot)
	if repositoryError != nil {
		return nil, repositoryError
	}

	applicationRegistry, registryError := registry.New(
		registry.Configuration{Layout: layout, RequireCompletionMarker: resolved.Index.RequireCompletionMarker},
		registry.Dependencies{Logger: logger, FileSystem: fileSystem, SourceControl: repository},
	)
	if registryError != nil {
		return nil, registryError
	}

	renderer := index.NewRenderer(
		index.RendererConfiguration{Layout: layout, LinkPrefix: resolved.Index.LinkPrefix, Placeholder: resolved.Index.Placeholder},
		logger,
		fileSystem,
	)

	generator, generatorError := index.NewGenerator(
		index.GeneratorConfiguration{TemplatePath: resolved.Index.Template, OutputPath: resolved.Index.Output},
		index.GeneratorDependencies{Logger: logger, Lister: applicationRegistry, Renderer: renderer, FileSystem: fileSystem},
	)
	if generatorError != nil {
		return nil, generatorError
	}

	logger.Debug(
		componentsAssembledLogMessageConstant,
		zap.String(logFieldStorageRootConstant, layout.Root),
		zap.String(logFieldRepositoryRootConstant, resolved.Storage.RepositoryRoot),
		zap.String(logFieldTemplateConstant, resolved.Index.Template),
		zap.String(logFieldOutputConstant, resolved.Index.Output),
	)

	return &Components{
		Configuration: resolved,
		Layout:        layout,
		Logger:        logger,
		FileSystem:    fileSystem,
		Repository:    repository,
		Registry:      applicationRegistry,
		Renderer:      renderer,
		Generator:     generator,
	}, nil
}

// NewPublisher constructs the release service. The index generator is attached
// only when regenerateIndex is set.
func (components *Components) NewPublisher(regenerateIndex bool) (*releases.Service, error) {
	var indexGenerator releases.IndexGenerator
	if regenerateIndex {
		indexGenerator = components.Generator
	}
	return releases.NewService(
		releases.ServiceConfiguration{
			Layout:            components.Layout,
			DefaultRemoteName: components.Configuration.Publish.Remote,
			DefaultTagMessage: components.Configuration.Publish.TagMessage,
		},
		releases.ServiceDependencies{
			Logger:         components.Logger,
			FileSystem:     components.FileSystem,
			SourceControl:  components.Repository,
			IndexGenerator: indexGenerator,
			Clock:          time.Now,
		},
	)
}

// NewWatcher constructs an index watcher over the storage root and template.
// A nil regenerator selects the assembled Generator.
func (components *Components) NewWatcher(regenerator index.Regenerator) (*index.Watcher, error) {
	if regenerator == nil {
		regenerator = components.Generator
	}
	return index.NewWatcher(
		index.WatcherConfiguration{
			StorageRoot:  components.Layout.Root,
			TemplatePath: components.Configuration.Index.Template,
			OutputPath:   components.Configuration.Index.Output,
			Debounce:     components.Configuration.Index.WatchDebounce,
		},
		regenerator,
		components.Logger,
	)
}

// AcquirePublishLock takes the publish lock inside the storage root. A nil
// lock and nil error are returned when locking is disabled.
func (components *Components) AcquirePublishLock(executionContext context.Context) (*releaselock.Lock, error) {
	lockFile := components.Configuration.Publish.LockFile
	if len(lockFile) == 0 {
		return nil, nil
	}
	lockPath := lockFile
	if !filepath.IsAbs(lockPath) {
		lockPath = filepath.Join(components.Layout.Root, lockFile)
	}
	return releaselock.Acquire(executionContext, lockPath, components.Configuration.Publish.LockTimeout)
}

func resolvePaths(configuration Configuration, pathResolver *storage.PathResolver) (Configuration, error) {
	resolved := configuration
	targets := []*string{
		&resolved.Storage.Root,
		&resolved.Storage.RepositoryRoot,
		&resolved.Index.Template,
		&resolved.Index.Output,
	}
	for _, target := range targets {
		absolutePath, absoluteError := pathResolver.Absolute(*target)
		if absoluteError != nil {
			return Configuration{}, failures.Wrap(failures.KindConfiguration, assembleOperationConstant, *target, pathResolutionMessageConstant, absoluteError)
		}
		*target = absolutePath
	}
	return resolved, nil
}
