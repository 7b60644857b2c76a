// Package gitrepo exposes the handful of git operations release publishing
// needs: tag lookup, creation, deletion and push, plus working tree status.
package gitrepo
