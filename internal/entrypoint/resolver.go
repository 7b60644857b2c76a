package entrypoint

import (
	"path/filepath"
)

const (
	htmlExtensionConstant     = ".html"
	indexDocumentNameConstant = "index.html"
)

// ExistenceChecker reports whether a filesystem entry exists.
type ExistenceChecker interface {
	Exists(path string) bool
}

// Resolver selects the browsable entry file of an application directory.
type Resolver struct {
	fileSystem ExistenceChecker
}

// NewResolver constructs a Resolver backed by the provided existence checker.
func NewResolver(fileSystem ExistenceChecker) *Resolver {
	return &Resolver{fileSystem: fileSystem}
}

// Resolve returns "<application>.html" when present in directory, otherwise
// "index.html" when present, otherwise false. Only existence is checked.
func (resolver *Resolver) Resolve(directory string, applicationName string) (string, bool) {
	if resolver == nil || resolver.fileSystem == nil {
		return "", false
	}

	for _, candidate := range Candidates(applicationName) {
		if resolver.fileSystem.Exists(filepath.Join(directory, candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// Candidates lists entry file names in preference order.
func Candidates(applicationName string) []string {
	if len(applicationName) == 0 {
		return []string{indexDocumentNameConstant}
	}
	return []string{applicationName + htmlExtensionConstant, indexDocumentNameConstant}
}
