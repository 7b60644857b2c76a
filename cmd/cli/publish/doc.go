// Package publish provides the publish command, which snapshots an
// application's working tree into an immutable release, tags and pushes it,
// and refreshes the index page.
package publish
