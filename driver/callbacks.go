package driver

import (
	"time"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// Exchange describes one completed command invocation, successful or not.
// Passed to the trace callback after the invocation terminates.
type Exchange struct {
	// Command is the command that was issued
	Command protocol.Command

	// BytesSent is the total bytes written, including any program payload
	BytesSent int

	// BytesReceived is the raw response bytes read back
	BytesReceived int

	// Duration is the wall time from encode to decode
	Duration time.Duration

	// Err is the terminal error, nil on success
	Err error
}

// TraceCallback observes each exchange after it terminates. Implementations
// should return quickly; the callback runs on the caller's goroutine while
// the driver still holds the command slot.
type TraceCallback func(Exchange)
