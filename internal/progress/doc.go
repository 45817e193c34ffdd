// Package progress defines the ProgressSink capability used during network transfers.
//
// Sinks receive (receivedBytes, receivedObjects, totalObjects) notifications
// synchronously on the goroutine performing the transfer. Tracker adapts the
// sideband progress text emitted by go-git into sink notifications while
// keeping the object counts monotonic.
package progress
