// Package storage describes where applications, working trees, releases and
// completion markers live under the storage root.
package storage
