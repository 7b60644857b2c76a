// Package registry discovers every published version of every application
// under the storage root, recomputing the summary on each query.
package registry
