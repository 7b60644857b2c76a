package storage

import (
	"path/filepath"
	"strings"

	"github.com/temirov/gamerelease/internal/failures"
)

const (
	// DefaultWorkingDirectoryName holds the editable copy of an application.
	DefaultWorkingDirectoryName = "working"
	// DefaultReleasesDirectoryName holds the immutable version snapshots.
	DefaultReleasesDirectoryName = "releases"
)

const (
	completionMarkerSuffixConstant         = ".published"
	layoutOperationConstant                = "storage layout"
	applicationNameOperationConstant       = "application name"
	storageRootRequiredMessageConstant     = "storage root required"
	directoryNameInvalidMessageConstant    = "directory names must be single path segments"
	directoryNamesCollideMessageConstant   = "working and releases directory names must differ"
	applicationNameRequiredMessageConstant = "application name required"
	applicationNameInvalidMessageConstant  = "application name must be a single path segment not starting with '-' or '.'"
	optionPrefixConstant                   = "-"
	hiddenPrefixConstant                   = "."
)

// Layout resolves application paths below Root:
//
//	{Root}/{app}/{WorkingDirectoryName}
//	{Root}/{app}/{ReleasesDirectoryName}/{version}
//	{Root}/{app}/{ReleasesDirectoryName}/{version}.published
type Layout struct {
	Root                  string
	WorkingDirectoryName  string
	ReleasesDirectoryName string
}

// NewLayout validates and constructs a Layout. Empty directory names fall back
// to "working" and "releases".
func NewLayout(root string, workingDirectoryName string, releasesDirectoryName string) (Layout, error) {
	trimmedRoot := strings.TrimSpace(root)
	if len(trimmedRoot) == 0 {
		return Layout{}, failures.New(failures.KindConfiguration, layoutOperationConstant, "", storageRootRequiredMessageConstant)
	}

	workingName := strings.TrimSpace(workingDirectoryName)
	if len(workingName) == 0 {
		workingName = DefaultWorkingDirectoryName
	}
	releasesName := strings.TrimSpace(releasesDirectoryName)
	if len(releasesName) == 0 {
		releasesName = DefaultReleasesDirectoryName
	}

	for _, name := range []string{workingName, releasesName} {
		if !isSinglePathSegment(name) {
			return Layout{}, failures.New(failures.KindConfiguration, layoutOperationConstant, name, directoryNameInvalidMessageConstant)
		}
	}
	if workingName == releasesName {
		return Layout{}, failures.New(failures.KindConfiguration, layoutOperationConstant, workingName, directoryNamesCollideMessageConstant)
	}

	return Layout{Root: filepath.Clean(trimmedRoot), WorkingDirectoryName: workingName, ReleasesDirectoryName: releasesName}, nil
}

// ApplicationPath returns the directory holding everything for one application.
func (layout Layout) ApplicationPath(applicationName string) string {
	return filepath.Join(layout.Root, applicationName)
}

// WorkingPath returns the mutable working tree of an application.
func (layout Layout) WorkingPath(applicationName string) string {
	return filepath.Join(layout.Root, applicationName, layout.WorkingDirectoryName)
}

// ReleasesPath returns the directory holding every release of an application.
func (layout Layout) ReleasesPath(applicationName string) string {
	return filepath.Join(layout.Root, applicationName, layout.ReleasesDirectoryName)
}

// ReleasePath returns the snapshot directory for one version, spelled as on disk.
func (layout Layout) ReleasePath(applicationName string, versionText string) string {
	return filepath.Join(layout.ReleasesPath(applicationName), versionText)
}

// CompletionMarkerPath returns the file written once a release has been fully published.
func (layout Layout) CompletionMarkerPath(applicationName string, versionText string) string {
	return filepath.Join(layout.ReleasesPath(applicationName), versionText+completionMarkerSuffixConstant)
}

// ValidateApplicationName rejects names that would escape the storage root or
// be read by git as an option.
func ValidateApplicationName(applicationName string) error {
	if len(strings.TrimSpace(applicationName)) == 0 {
		return failures.New(failures.KindValidation, applicationNameOperationConstant, "", applicationNameRequiredMessageConstant)
	}
	if !isSinglePathSegment(applicationName) || strings.HasPrefix(applicationName, optionPrefixConstant) || strings.HasPrefix(applicationName, hiddenPrefixConstant) {
		return failures.New(failures.KindValidation, applicationNameOperationConstant, applicationName, applicationNameInvalidMessageConstant)
	}
	return nil
}

func isSinglePathSegment(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && strings.TrimSpace(name) == name
}
