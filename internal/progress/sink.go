package progress

import (
	"sync"

	"go.uber.org/zap"
)

const (
	transferProgressMessageConstant = "transfer progress"
	logFieldReceivedBytesConstant   = "received_bytes"
	logFieldReceivedObjectsConstant = "received_objects"
	logFieldTotalObjectsConstant    = "total_objects"
)

// Snapshot captures one progress notification.
type Snapshot struct {
	ReceivedBytes   uint64
	ReceivedObjects uint32
	TotalObjects    uint32
}

// Sink receives transfer progress notifications. Implementations must not block.
type Sink interface {
	Progress(receivedBytes uint64, receivedObjects uint32, totalObjects uint32)
}

// NopSink discards all notifications.
type NopSink struct{}

// Progress implements Sink.
func (NopSink) Progress(uint64, uint32, uint32) {}

// LoggingSink writes each notification to a zap logger at debug level.
type LoggingSink struct {
	logger *zap.Logger
}

// NewLoggingSink constructs a LoggingSink. A nil logger discards output.
func NewLoggingSink(logger *zap.Logger) *LoggingSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingSink{logger: logger}
}

// Progress implements Sink.
func (sink *LoggingSink) Progress(receivedBytes uint64, receivedObjects uint32, totalObjects uint32) {
	sink.logger.Debug(
		transferProgressMessageConstant,
		zap.Uint64(logFieldReceivedBytesConstant, receivedBytes),
		zap.Uint32(logFieldReceivedObjectsConstant, receivedObjects),
		zap.Uint32(logFieldTotalObjectsConstant, totalObjects),
	)
}

// RecordingSink retains every notification in arrival order.
type RecordingSink struct {
	mutex     sync.Mutex
	snapshots []Snapshot
}

// Progress implements Sink.
func (sink *RecordingSink) Progress(receivedBytes uint64, receivedObjects uint32, totalObjects uint32) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.snapshots = append(sink.snapshots, Snapshot{
		ReceivedBytes:   receivedBytes,
		ReceivedObjects: receivedObjects,
		TotalObjects:    totalObjects,
	})
}

// Snapshots returns a copy of the recorded notifications.
func (sink *RecordingSink) Snapshots() []Snapshot {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return append([]Snapshot{}, sink.snapshots...)
}
