package driver

import (
	"errors"
	"time"
)

// ErrTimeout is reported (possibly wrapped) by Transport.ReadUntil when no
// complete response unit arrives within the timeout. The sequencer turns it
// into a *protocol.ProtocolError of kind KindTimeout; any other read error
// passes through as a *TransportError.
var ErrTimeout = errors.New("read timed out")

// Transport is the half-duplex serial link capability the driver consumes.
// Opening, configuring, and closing the physical link is the caller's
// responsibility; the driver only writes frames and reads responses.
//
// The link has a single response stream and no request multiplexing, so a
// Transport is exclusively owned by one Driver for the life of the
// connection.
type Transport interface {
	// Write sends the full byte slice down the link.
	Write(p []byte) error

	// ReadUntil accumulates incoming bytes until complete reports that the
	// buffer holds a full response unit, then returns the buffer. On
	// timeout it returns whatever arrived together with ErrTimeout. On a
	// link failure it returns the partial buffer and the underlying error;
	// io.EOF means the far side closed mid-response.
	ReadUntil(complete func(buf []byte) bool, timeout time.Duration) ([]byte, error)

	// Flush discards any stale bytes pending on the input side, so a
	// response can't be polluted by leftovers from an earlier exchange.
	Flush() error
}
