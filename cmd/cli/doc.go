// Package cli builds the repoverify command line: the Cobra verbs auto,
// examples, clone, and test, the layered configuration they read, and the
// EXCEPTION failure report printed before exiting.
package cli
