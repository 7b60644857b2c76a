// Package dependencies resolves the collaborators shared by the release
// commands: the git executor, the filesystem, and the registry, index and
// publisher components assembled from configuration.
package dependencies
