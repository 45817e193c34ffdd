// Package asyncrunner executes one repository operation on a worker
// goroutine and reports a single completion to the caller.
//
// A Runner allows one outstanding run at a time. Timeouts while waiting do
// not interrupt the worker; the run stays outstanding until its completion
// is received.
package asyncrunner
