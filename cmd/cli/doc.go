// Package cli constructs the gamerelease command-line interface. It wires the
// Cobra command hierarchy to the layered configuration loader and the zap
// logger outputs, then registers the publish, index, and apps commands.
package cli
