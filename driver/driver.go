package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// Driver sequences TeachMover commands over an injected Transport: one
// entry point per firmware command, each driving exactly one
// request/response exchange to completion.
//
// A Driver owns its Transport for the life of the connection. Invocations
// are serialized; a command issued while another is in flight fails fast
// with *SequencingViolation rather than queueing or deadlocking.
type Driver struct {
	transport Transport
	config    Config

	// inflight guards the single command slot. TryLock, never Lock:
	// overlap is a caller bug, not contention to wait out.
	inflight sync.Mutex
}

// New creates a Driver over the given transport.
//
// Example:
//
//	port, _ := serialport.Open("/dev/ttyUSB0", serialport.DefaultBaudRate)
//	drv := driver.New(port,
//	    driver.WithTimeout(5*time.Second),
//	    driver.WithLogger(log),
//	)
func New(transport Transport, opts ...Option) *Driver {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Driver{
		transport: transport,
		config:    cfg,
	}
}

// Step moves all steppers synchronously by the given per-axis step deltas.
// Exactly protocol.StepArity deltas are required; a wrong count fails with
// *protocol.EncodingError before anything is written.
//
// If Step times out mid-motion the device state is indeterminate; call
// Reset before issuing further motion commands.
func (d *Driver) Step(ctx context.Context, deltas []int) error {
	_, err := d.exchange(ctx, protocol.CmdStep, deltas, nil)
	return err
}

// CloseGripper closes the gripper.
func (d *Driver) CloseGripper(ctx context.Context) error {
	_, err := d.exchange(ctx, protocol.CmdClose, nil, nil)
	return err
}

// EnableTeachMode hands control to the handheld teach pendant.
func (d *Driver) EnableTeachMode(ctx context.Context) error {
	_, err := d.exchange(ctx, protocol.CmdSet, nil, nil)
	return err
}

// Reset clears the device's internal position registers and shuts off
// motor current. Any RegisterSet read before a successful Reset no longer
// describes the device and must be discarded by the caller.
func (d *Driver) Reset(ctx context.Context) error {
	_, err := d.exchange(ctx, protocol.CmdReset, nil, nil)
	return err
}

// ReadRegisters reads the internal position registers. The returned set is
// a caller-owned snapshot of the device state at the time of the call.
func (d *Driver) ReadRegisters(ctx context.Context) (protocol.RegisterSet, error) {
	resp, err := d.exchange(ctx, protocol.CmdRead, nil, nil)
	if err != nil {
		return protocol.RegisterSet{}, err
	}
	return resp.Registers, nil
}

// DumpProgram dumps the taught program currently stored in device memory.
func (d *Driver) DumpProgram(ctx context.Context) (protocol.Program, error) {
	resp, err := d.exchange(ctx, protocol.CmdQDump, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Program, nil
}

// WriteProgram uploads a previously dumped program to device memory.
// The exchange has two send phases inside the one invocation: the QWRITE
// frame, then the program bytes followed by the program terminator; the
// device then acknowledges.
//
// If WriteProgram times out, the upload stopped mid-stream and device
// memory is indeterminate; call Reset and upload again.
func (d *Driver) WriteProgram(ctx context.Context, program protocol.Program) error {
	payload := make([]byte, 0, len(program)+len(protocol.ProgramTerminator))
	payload = append(payload, program...)
	payload = append(payload, protocol.ProgramTerminator...)

	_, err := d.exchange(ctx, protocol.CmdQWrite, nil, payload)
	return err
}

// RunProgram runs the taught program currently stored in device memory.
func (d *Driver) RunProgram(ctx context.Context) error {
	_, err := d.exchange(ctx, protocol.CmdRun, nil, nil)
	return err
}

// exchange drives one command to completion: encode, send, await, decode.
// Terminal on first success or first unrecoverable failure; never retries.
func (d *Driver) exchange(ctx context.Context, cmd protocol.Command, params []int, payload []byte) (*protocol.Response, error) {
	if !d.inflight.TryLock() {
		return nil, &SequencingViolation{Command: cmd}
	}
	defer d.inflight.Unlock()

	start := time.Now()
	resp, sent, received, err := d.run(ctx, cmd, params, payload)

	ex := Exchange{
		Command:       cmd,
		BytesSent:     sent,
		BytesReceived: received,
		Duration:      time.Since(start),
		Err:           err,
	}
	if d.config.Trace != nil {
		d.config.Trace(ex)
	}

	if err != nil {
		d.config.Logger.Debug().
			Str("command", cmd.String()).
			Int("sent", sent).
			Int("received", received).
			Dur("elapsed", ex.Duration).
			Err(err).
			Msg("exchange failed")
		return nil, err
	}

	d.config.Logger.Debug().
		Str("command", cmd.String()).
		Int("sent", sent).
		Int("received", received).
		Dur("elapsed", ex.Duration).
		Msg("exchange complete")

	return resp, nil
}

func (d *Driver) run(ctx context.Context, cmd protocol.Command, params []int, payload []byte) (resp *protocol.Response, sent, received int, err error) {
	// Encoding failures abort before any I/O.
	frame, err := protocol.Encode(cmd, params...)
	if err != nil {
		return nil, 0, 0, err
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("cancelled: %w", err)
	}

	if err := d.transport.Flush(); err != nil {
		return nil, 0, 0, &TransportError{Op: "flush", Err: err}
	}

	if err := d.send(frame); err != nil {
		return nil, 0, 0, err
	}
	sent = len(frame)

	if payload != nil {
		if err := ctx.Err(); err != nil {
			return nil, sent, 0, fmt.Errorf("cancelled: %w", err)
		}
		if err := d.send(payload); err != nil {
			return nil, sent, 0, err
		}
		sent += len(payload)
	}

	raw, readErr := d.transport.ReadUntil(protocol.Complete(cmd.Shape()), d.config.ReadTimeout)
	received = len(raw)
	if readErr != nil {
		switch {
		case errors.Is(readErr, ErrTimeout):
			return nil, sent, received, &protocol.ProtocolError{
				Command: cmd,
				Kind:    protocol.KindTimeout,
				Detail:  fmt.Sprintf("no complete response within %s", d.config.ReadTimeout),
			}
		case errors.Is(readErr, io.EOF):
			// Link closed mid-response: let the decoder report the
			// truncation against whatever did arrive.
			resp, err = protocol.Decode(cmd, raw)
			return resp, sent, received, err
		default:
			return nil, sent, received, &TransportError{Op: "read", Err: readErr}
		}
	}

	resp, err = protocol.Decode(cmd, raw)
	return resp, sent, received, err
}

// send writes the full buffer and applies the configured inter-command delay.
func (d *Driver) send(p []byte) error {
	if err := d.transport.Write(p); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if d.config.CommandDelay > 0 {
		time.Sleep(d.config.CommandDelay)
	}
	return nil
}
