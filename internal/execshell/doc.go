// Package execshell runs git as an external process in a testable way.
//
// ShellExecutor wraps a CommandRunner with structured zap logging and typed
// failures, OSCommandRunner provides the os/exec implementation, and
// CommandMessageFormatter renders the human-readable sentences used when the
// console log format is selected.
package execshell
