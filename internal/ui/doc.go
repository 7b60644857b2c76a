// Package ui turns command lifecycle events into short console sentences so
// that publishing feedback stays readable while structured records continue
// to flow through the main logger.
package ui
