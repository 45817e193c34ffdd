package progress

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

const (
	carriageReturnConstant = "\r"
	lineFeedConstant       = "\n"
	byteSizeSeparator      = "|"
)

// phaseLinePattern matches sideband lines such as
// "Receiving objects:  45% (9/20), 1.20 MiB | 2.00 MiB/s".
var phaseLinePattern = regexp.MustCompile(`^\s*(?:remote:\s*)?([A-Za-z][A-Za-z ]*?):\s+\d+%\s+\((\d+)/(\d+)\)(?:,\s*([0-9.]+\s*[KMGT]?i?B))?`)

// Tracker converts go-git sideband progress text into Sink notifications.
//
// The first phase that reports an object total becomes the tracked phase for
// the whole operation. Observations from other phases, observations that would
// decrease the received count, and observations with a different total are
// dropped so that sinks see a monotonic sequence with a constant total.
//
// Received bytes come only from a size column in the progress text. go-git
// forwards the server's sideband (counting and compressing phases), which
// carries no size, so pulls and clones report zero received bytes.
type Tracker struct {
	sink Sink

	mutex           sync.Mutex
	pending         strings.Builder
	trackedPhase    string
	totalObjects    uint32
	receivedObjects uint32
	receivedBytes   uint64
	notified        bool
}

// NewTracker builds a Tracker that forwards notifications to sink.
func NewTracker(sink Sink) *Tracker {
	if sink == nil {
		sink = NopSink{}
	}
	return &Tracker{sink: sink}
}

// Write implements io.Writer for go-git Progress options.
func (tracker *Tracker) Write(data []byte) (int, error) {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()

	tracker.pending.Write(data)
	buffered := tracker.pending.String()
	buffered = strings.ReplaceAll(buffered, carriageReturnConstant, lineFeedConstant)

	lastSeparator := strings.LastIndex(buffered, lineFeedConstant)
	if lastSeparator == -1 {
		return len(data), nil
	}

	completeText := buffered[:lastSeparator]
	remainder := buffered[lastSeparator+1:]
	tracker.pending.Reset()
	tracker.pending.WriteString(remainder)

	for _, line := range strings.Split(completeText, lineFeedConstant) {
		tracker.observeLine(line)
	}

	return len(data), nil
}

// Flush processes any buffered partial line.
func (tracker *Tracker) Flush() error {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()

	remainder := tracker.pending.String()
	tracker.pending.Reset()
	if len(strings.TrimSpace(remainder)) > 0 {
		tracker.observeLine(remainder)
	}
	return nil
}

// Last returns the most recent notification forwarded to the sink and whether one was sent.
func (tracker *Tracker) Last() (Snapshot, bool) {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()
	return Snapshot{
		ReceivedBytes:   tracker.receivedBytes,
		ReceivedObjects: tracker.receivedObjects,
		TotalObjects:    tracker.totalObjects,
	}, tracker.notified
}

func (tracker *Tracker) observeLine(line string) {
	matches := phaseLinePattern.FindStringSubmatch(line)
	if matches == nil {
		return
	}

	phase := strings.TrimSpace(matches[1])
	received, receivedError := strconv.ParseUint(matches[2], 10, 32)
	total, totalError := strconv.ParseUint(matches[3], 10, 32)
	if receivedError != nil || totalError != nil || total == 0 {
		return
	}

	if len(tracker.trackedPhase) == 0 {
		tracker.trackedPhase = phase
		tracker.totalObjects = uint32(total)
	}
	if phase != tracker.trackedPhase || uint32(total) != tracker.totalObjects {
		return
	}

	receivedObjects := uint32(received)
	if receivedObjects > tracker.totalObjects {
		receivedObjects = tracker.totalObjects
	}
	if tracker.notified && receivedObjects < tracker.receivedObjects {
		return
	}

	if len(matches[4]) > 0 {
		sizeText := strings.TrimSpace(strings.Split(matches[4], byteSizeSeparator)[0])
		if parsedBytes, parseError := humanize.ParseBytes(sizeText); parseError == nil && parsedBytes >= tracker.receivedBytes {
			tracker.receivedBytes = parsedBytes
		}
	}

	tracker.receivedObjects = receivedObjects
	tracker.notified = true
	tracker.sink.Progress(tracker.receivedBytes, tracker.receivedObjects, tracker.totalObjects)
}
