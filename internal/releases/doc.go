// Package releases publishes a version of an application: it snapshots the
// working tree into an immutable release directory, records the release as a
// git tag on the remote, and refreshes the site index.
//
// Every failure is reported as a PublishError naming the stage that failed
// and which earlier side effects were left in place.
package releases
