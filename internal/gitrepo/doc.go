// Package gitrepo adapts go-git repositories to the operations repoverify checks.
//
// It exposes Repository for interrogating status, branches, the index, tags,
// and commits, for the mutating operations the scenario performs (stage,
// unstage, restore, commit, reset, tag create and delete), and for computing
// working tree diffs. Network operations (clone, pull) accept go-git
// authentication methods and progress writers supplied by the caller.
package gitrepo
