// Package filesystem provides the file operations consumed by the registry,
// the index generator and the publisher, backed by an afero file system so
// the same code runs against the operating system or an in-memory tree.
package filesystem
