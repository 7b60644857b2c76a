package registry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/entrypoint"
	"github.com/temirov/gamerelease/internal/failures"
	"github.com/temirov/gamerelease/internal/storage"
	"github.com/temirov/gamerelease/internal/versions"
)

const (
	listApplicationsOperationConstant      = "list applications"
	discoverVersionsOperationConstant      = "discover versions"
	storageRootMissingMessageConstant      = "storage root is not a directory"
	storageRootUnreadableMessageConstant   = "storage root could not be read"
	releasesUnreadableMessageConstant      = "releases directory could not be read"
	fileSystemNotConfiguredMessageConstant = "registry file system not configured"
	applicationSkippedLogMessageConstant   = "application skipped"
	noReleasesDirectoryLogMessageConstant  = "application has no releases directory"
	invalidVersionLogMessageConstant       = "ignoring release directory with invalid version name"
	unmarkedReleaseLogMessageConstant      = "ignoring release directory without completion marker"
	versionCollisionLogMessageConstant     = "release directories share a numeric version"
	dirtinessQueryFailedLogMessageConstant = "working tree status unavailable; assuming no uncommitted changes"
	logFieldApplicationConstant            = "application"
	logFieldDirectoryConstant              = "directory"
	logFieldVersionConstant                = "version"
	logFieldConflictingVersionConstant     = "conflicting_version"
	logFieldReasonConstant                 = "reason"
	logFieldApplicationsConstant           = "applications"
	applicationsListedLogMessageConstant   = "applications listed"
)

// ErrFileSystemNotConfigured indicates the registry was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)

// FileSystem exposes the read-only operations the registry needs.
type FileSystem interface {
	ListDirectories(path string) ([]string, error)
	Exists(path string) bool
	IsDirectory(path string) bool
}

// SourceControl answers whether a path has uncommitted changes.
type SourceControl interface {
	HasUncommittedChanges(executionContext context.Context, path string) (bool, error)
}

// Configuration controls where the registry looks and what it accepts.
type Configuration struct {
	Layout                  storage.Layout
	RequireCompletionMarker bool
}

// Dependencies holds the registry collaborators. SourceControl is optional.
type Dependencies struct {
	Logger        *zap.Logger
	FileSystem    FileSystem
	SourceControl SourceControl
}

// Entry summarizes one application.
type Entry struct {
	Name                  string             `json:"name" yaml:"name"`
	HasUncommittedChanges bool               `json:"has_uncommitted_changes" yaml:"has_uncommitted_changes"`
	LatestVersion         *versions.Version  `json:"latest_version" yaml:"latest_version"`
	AllVersions           []versions.Version `json:"all_versions" yaml:"all_versions"`
	EntryPoint            *string            `json:"entry_point" yaml:"entry_point"`
}

// Registry lists applications and their published versions.
type Registry struct {
	configuration Configuration
	logger        *zap.Logger
	fileSystem    FileSystem
	sourceControl SourceControl
	resolver      *entrypoint.Resolver
}

// New constructs a Registry.
func New(configuration Configuration, dependencies Dependencies) (*Registry, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		configuration: configuration,
		logger:        logger,
		fileSystem:    dependencies.FileSystem,
		sourceControl: dependencies.SourceControl,
		resolver:      entrypoint.NewResolver(dependencies.FileSystem),
	}, nil
}

// Layout returns the storage layout the registry scans.
func (registry *Registry) Layout() storage.Layout {
	return registry.configuration.Layout
}

// ListApplications returns one entry per application directory, sorted by
// name. Applications whose releases directory is missing or unreadable are
// omitted; problems confined to a single application never fail the scan.
func (registry *Registry) ListApplications(executionContext context.Context) ([]Entry, error) {
	layout := registry.configuration.Layout
	if !registry.fileSystem.IsDirectory(layout.Root) {
		return nil, failures.New(failures.KindConfiguration, listApplicationsOperationConstant, layout.Root, storageRootMissingMessageConstant)
	}

	applicationNames, listError := registry.fileSystem.ListDirectories(layout.Root)
	if listError != nil {
		return nil, failures.Wrap(failures.KindConfiguration, listApplicationsOperationConstant, layout.Root, storageRootUnreadableMessageConstant, listError)
	}

	entries := make([]Entry, 0, len(applicationNames))
	for _, applicationName := range applicationNames {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}

		entry, included := registry.describeApplication(executionContext, applicationName)
		if included {
			entries = append(entries, entry)
		}
	}

	registry.logger.Debug(applicationsListedLogMessageConstant, zap.Int(logFieldApplicationsConstant, len(entries)))
	return entries, nil
}

func (registry *Registry) describeApplication(executionContext context.Context, applicationName string) (Entry, bool) {
	layout := registry.configuration.Layout
	releasesPath := layout.ReleasesPath(applicationName)

	if !registry.fileSystem.IsDirectory(releasesPath) {
		registry.logger.Debug(noReleasesDirectoryLogMessageConstant, zap.String(logFieldApplicationConstant, applicationName), zap.String(logFieldDirectoryConstant, releasesPath))
		return Entry{}, false
	}

	allVersions, discoveryError := registry.discoverVersions(applicationName, releasesPath)
	if discoveryError != nil {
		registry.logger.Warn(applicationSkippedLogMessageConstant, zap.String(logFieldApplicationConstant, applicationName), zap.Error(discoveryError))
		return Entry{}, false
	}

	entry := Entry{
		Name:                  applicationName,
		HasUncommittedChanges: registry.hasUncommittedChanges(executionContext, applicationName),
		AllVersions:           allVersions,
	}
	if len(allVersions) > 0 {
		latestVersion := allVersions[0]
		entry.LatestVersion = &latestVersion
	}
	if workingEntryPoint, found := registry.resolver.Resolve(layout.WorkingPath(applicationName), applicationName); found {
		entry.EntryPoint = &workingEntryPoint
	}

	return entry, true
}

// discoverVersions returns the valid versions below releasesPath, latest first.
func (registry *Registry) discoverVersions(applicationName string, releasesPath string) ([]versions.Version, error) {
	directoryNames, listError := registry.fileSystem.ListDirectories(releasesPath)
	if listError != nil {
		return nil, failures.Wrap(failures.KindObservation, discoverVersionsOperationConstant, applicationName, releasesUnreadableMessageConstant, listError)
	}

	parsedVersions, invalidNames := versions.ParseAll(directoryNames)
	for _, invalidName := range invalidNames {
		registry.logger.Warn(
			invalidVersionLogMessageConstant,
			zap.String(logFieldApplicationConstant, applicationName),
			zap.String(logFieldDirectoryConstant, invalidName.Input),
			zap.String(logFieldReasonConstant, invalidName.Message),
		)
	}

	acceptedVersions := make([]versions.Version, 0, len(parsedVersions))
	for _, parsedVersion := range parsedVersions {
		if registry.configuration.RequireCompletionMarker && !registry.fileSystem.Exists(registry.configuration.Layout.CompletionMarkerPath(applicationName, parsedVersion.Text())) {
			registry.logger.Warn(unmarkedReleaseLogMessageConstant, zap.String(logFieldApplicationConstant, applicationName), zap.String(logFieldVersionConstant, parsedVersion.Text()))
			continue
		}
		if existing, collides := versions.FindEqual(acceptedVersions, parsedVersion); collides {
			registry.logger.Warn(
				versionCollisionLogMessageConstant,
				zap.String(logFieldApplicationConstant, applicationName),
				zap.String(logFieldVersionConstant, parsedVersion.Text()),
				zap.String(logFieldConflictingVersionConstant, existing.Text()),
			)
		}
		acceptedVersions = append(acceptedVersions, parsedVersion)
	}

	versions.SortDescending(acceptedVersions)
	return acceptedVersions, nil
}

func (registry *Registry) hasUncommittedChanges(executionContext context.Context, applicationName string) bool {
	if registry.sourceControl == nil {
		return false
	}

	workingPath := registry.configuration.Layout.WorkingPath(applicationName)
	dirty, statusError := registry.sourceControl.HasUncommittedChanges(executionContext, workingPath)
	if statusError != nil {
		registry.logger.Warn(dirtinessQueryFailedLogMessageConstant, zap.String(logFieldApplicationConstant, applicationName), zap.Error(statusError))
		return false
	}
	return dirty
}
