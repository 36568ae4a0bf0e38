// Package serialport implements driver.Transport over a physical serial
// link using go.bug.st/serial.
//
// The TeachMover's factory link configuration is 9600 baud, 8 data bits,
// 1 stop bit, no parity, full duplex.
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/JBarrett33/go-teachmover/driver"
)

// DefaultBaudRate is the TeachMover's factory baud rate.
const DefaultBaudRate = 9600

// readChunkSize is the per-read buffer size. Responses are tiny; this is
// generous.
const readChunkSize = 64

// conn is the subset of serial.Port this package uses, split out so tests
// can run against a fake.
type conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Port is a serial connection to the arm, implementing driver.Transport.
// It is not safe for concurrent use; hand it to exactly one Driver.
type Port struct {
	conn conn
	path string
}

// Open opens and configures the serial device at path. A baud of 0 selects
// DefaultBaudRate; the remaining link parameters are fixed to the arm's
// 8N1 configuration.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
func Open(path string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	c, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Port{conn: c, path: path}, nil
}

// Path returns the device path the port was opened on.
func (p *Port) Path() string {
	return p.path
}

// Write sends the full byte slice down the link.
func (p *Port) Write(b []byte) error {
	n, err := p.conn.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(b))
	}
	return nil
}

// ReadUntil accumulates bytes until complete reports a full response unit,
// or the timeout elapses. The deadline covers the whole accumulation, not
// each individual read, so a device that trickles bytes without ever
// finishing still times out on schedule.
func (p *Port) ReadUntil(complete func(buf []byte) bool, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf, driver.ErrTimeout
		}
		if err := p.conn.SetReadTimeout(remaining); err != nil {
			return buf, err
		}

		n, err := p.conn.Read(chunk)
		if err != nil {
			return buf, err
		}
		if n == 0 {
			// go.bug.st/serial signals an expired read timeout as a
			// zero-length read with no error.
			return buf, driver.ErrTimeout
		}

		buf = append(buf, chunk[:n]...)
		if complete(buf) {
			return buf, nil
		}
	}
}

// Flush discards any bytes pending on the input side.
func (p *Port) Flush() error {
	return p.conn.ResetInputBuffer()
}

// Close closes the underlying serial device.
func (p *Port) Close() error {
	return p.conn.Close()
}
