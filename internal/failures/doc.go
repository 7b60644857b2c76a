// Package failures defines the error taxonomy shared by the publisher, the
// registry, and the index generator.
//
// Lower-level I/O and git errors are wrapped into an Error with one of the
// Kind values so callers can decide whether an operation failed before any
// side effect, after partial side effects, or only for a single application.
package failures
