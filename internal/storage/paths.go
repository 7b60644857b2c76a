package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// PathResolver turns configured paths into absolute paths, expanding a
// leading tilde to the user's home directory.
type PathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewPathResolver constructs a PathResolver using the operating system home lookup.
func NewPathResolver() *PathResolver {
	return NewPathResolverWithProvider(os.UserHomeDir)
}

// NewPathResolverWithProvider constructs a PathResolver with a custom home provider.
func NewPathResolverWithProvider(provider HomeDirectoryProvider) *PathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &PathResolver{homeDirectoryProvider: provider}
}

// Expand resolves leading tilde prefixes to the user's home directory.
func (resolver *PathResolver) Expand(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

// Absolute expands the path and makes it absolute relative to the process working directory.
func (resolver *PathResolver) Absolute(candidatePath string) (string, error) {
	expanded := resolver.Expand(strings.TrimSpace(candidatePath))
	if len(expanded) == 0 {
		return "", nil
	}
	return filepath.Abs(expanded)
}

func (resolver *PathResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
