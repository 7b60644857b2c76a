// Package apps provides the apps command, which prints the version registry.
package apps
