// Package index renders the navigation list of published applications into
// the site template and writes the resulting page.
//
// Renderer is a pure transformation from registry entries to markup,
// Generator performs the read-scan-render-write cycle, and Watcher reruns the
// generator whenever the storage tree or the template changes.
package index
