// Package lock guards repositories with advisory file locks so that only one
// asynchronous operation per repository is outstanding across processes.
package lock
