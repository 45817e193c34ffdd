// Package harnesserrors defines the single error kind raised by repoverify checks.
//
// HarnessError carries a human-readable message and an optional integer code.
// Scenario steps return it on the first violated invariant, and the outer
// scenario driver decorates it with the engine's diagnostic text.
package harnesserrors
