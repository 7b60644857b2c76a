// Package entrypoint determines which HTML file a browser should load for a
// given application directory.
package entrypoint
