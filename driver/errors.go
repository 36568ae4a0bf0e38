package driver

import (
	"fmt"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// TransportError wraps a link-level failure reported by the Transport.
// The underlying error passes through verbatim and is reachable via
// errors.Unwrap / errors.Is.
type TransportError struct {
	// Op is the transport operation that failed ("write", "read", "flush")
	Op string

	// Err is the error the transport reported
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SequencingViolation reports a command issued while another command was
// still in flight on the same driver. The link is half-duplex with a
// single response stream, so overlapping commands are a caller bug; the
// violating call fails fast without touching the transport.
type SequencingViolation struct {
	// Command is the command that was rejected
	Command protocol.Command
}

func (e *SequencingViolation) Error() string {
	return fmt.Sprintf("%s issued while another command is in flight", e.Command)
}
