// Package driver provides the high-level API for controlling a Microbot
// TeachMover arm over a serial link.
//
// # Overview
//
// The driver sequences one firmware command per call over an injected
// Transport: encode the frame, write it, await the response under a
// timeout, decode it. The wire format itself lives in the protocol
// package; this package owns the request/reply discipline.
//
// # Basic Usage
//
//	port, err := serialport.Open("/dev/ttyUSB0", serialport.DefaultBaudRate)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	drv := driver.New(port)
//
//	regs, err := drv.ReadRegisters(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(regs)
//
//	err = drv.Step(context.Background(), []int{100, 200, 0, 0, 50})
//
// # Configuration Options
//
//	drv := driver.New(port,
//	    driver.WithTimeout(5*time.Second),
//	    driver.WithCommandDelay(10*time.Millisecond),
//	    driver.WithLogger(log),
//	    driver.WithTrace(traceFunc),
//	)
//
// # Sequencing
//
// The link is half-duplex with a single response stream, so exactly one
// command may be in flight per Driver. A call made while another command
// is pending fails immediately with *SequencingViolation and never touches
// the transport. Serialize callers externally if concurrent access is
// needed; the driver will not queue for you.
//
// # Error Handling
//
// Every method returns either a complete, validated result or one of:
//   - *protocol.EncodingError: bad input, raised before any I/O
//   - *protocol.ProtocolError: timeout, truncated, or off-contract response
//   - *TransportError: link failure, underlying error passed through verbatim
//   - *SequencingViolation: overlapping commands (caller bug)
//
// Timeouts and transport errors are plausibly retryable; after a timeout
// during Step or WriteProgram the device's internal state is
// indeterminate, so Reset before continuing. Encoding and sequencing
// errors are caller bugs and not retryable.
//
// # Hardware Independence
//
// This package does not open serial ports. Provide any Transport
// implementation: the serialport package for real hardware, or a mock for
// testing.
package driver
