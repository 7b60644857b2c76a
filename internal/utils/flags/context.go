// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import "github.com/spf13/cobra"

const (
	// StorageRootFlagName exposes the shared storage root flag name.
	StorageRootFlagName = "root"
	// StorageRootFlagUsage describes the shared storage root flag purpose.
	StorageRootFlagUsage = "Directory holding one subdirectory per application"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Validate and report the planned release without making changes"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote receiving the release tag"
)

// StorageRootFlagValues stores the storage root flag value.
type StorageRootFlagValues struct {
	Root string
}

// BindStorageRootFlag attaches the storage root flag to the provided command.
// An empty value defers to configuration.
func BindStorageRootFlag(command *cobra.Command, defaults StorageRootFlagValues) *StorageRootFlagValues {
	values := defaults
	if command == nil {
		return &values
	}
	if command.Flags().Lookup(StorageRootFlagName) == nil {
		command.Flags().StringVar(&values.Root, StorageRootFlagName, defaults.Root, StorageRootFlagUsage)
	}
	return &values
}

// EnsureRemoteFlag guarantees the shared remote flag is available on the command.
func EnsureRemoteFlag(command *cobra.Command, defaultValue string, usage string) {
	if command == nil {
		return
	}
	if len(usage) == 0 {
		usage = RemoteFlagUsage
	}
	if command.Flags().Lookup(RemoteFlagName) == nil {
		command.Flags().String(RemoteFlagName, defaultValue, usage)
	}
}
