// Package versions parses release directory and tag names into ordered
// semantic versions and selects the latest of a set.
package versions
