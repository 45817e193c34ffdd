// Package scenario sequences check-mutate-check steps against an open
// repository and stops at the first violated expectation.
//
// Every step leaves the repository clean: no staged or modified entries and
// HEAD where it was when the step began. Failures are HarnessErrors whose
// message is decorated with the repository's diagnostic text by Runner.Run.
package scenario
