// Package index provides the index command, which renders the published
// applications into the site index page once or continuously.
package index
