package utils

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// LineFlushingWriter buffers console output and flushes it whenever a write
// completes a line, so interleaved dump and log output stays line aligned.
type LineFlushingWriter struct {
	mutex  sync.Mutex
	buffer *bufio.Writer
}

// NewLineFlushingWriter wraps writer. A nil writer discards output.
func NewLineFlushingWriter(writer io.Writer) *LineFlushingWriter {
	if writer == nil {
		writer = io.Discard
	}
	return &LineFlushingWriter{buffer: bufio.NewWriter(writer)}
}

// Write buffers data and flushes once data contains a line break.
func (lineWriter *LineFlushingWriter) Write(data []byte) (int, error) {
	lineWriter.mutex.Lock()
	defer lineWriter.mutex.Unlock()

	bytesWritten, writeError := lineWriter.buffer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return bytesWritten, lineWriter.buffer.Flush()
	}
	return bytesWritten, nil
}

// Flush writes any partial line still buffered.
func (lineWriter *LineFlushingWriter) Flush() error {
	lineWriter.mutex.Lock()
	defer lineWriter.mutex.Unlock()
	return lineWriter.buffer.Flush()
}
