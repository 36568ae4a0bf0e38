package protocol

import (
	"bytes"
	"fmt"
)

// ResponseShape declares what a command's response looks like on the wire.
type ResponseShape int

const (
	// ShapeAck is a bare acknowledgement: the single AckByte character
	ShapeAck ResponseShape = iota

	// ShapeRegisters is a fixed-count register dump: NumRegisters ASCII
	// signed decimals, comma-separated, terminated by FrameTerminator
	ShapeRegisters

	// ShapeProgram is a variable-length program blob terminated by
	// ProgramTerminator
	ShapeProgram
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeAck:
		return "ack"
	case ShapeRegisters:
		return "registers"
	case ShapeProgram:
		return "program"
	default:
		return fmt.Sprintf("unknown shape %d", int(s))
	}
}

// Response is the structured result of one command. The variant in use is
// fixed by the command that produced it: Registers is meaningful only for
// ShapeRegisters, Program only for ShapeProgram.
type Response struct {
	// Command is the command that produced this response
	Command Command

	// Shape is the response variant
	Shape ResponseShape

	// Registers holds the decoded register values (ShapeRegisters only)
	Registers RegisterSet

	// Program holds the dumped program bytes (ShapeProgram only)
	Program Program
}

// Complete returns the predicate that recognizes a full response unit of
// the given shape in an accumulating read buffer. The sequencer feeds it
// to Transport.ReadUntil so wire knowledge stays in this package.
func Complete(shape ResponseShape) func([]byte) bool {
	switch shape {
	case ShapeRegisters:
		return func(buf []byte) bool {
			return bytes.IndexByte(buf, FrameTerminator) >= 0
		}
	case ShapeProgram:
		return func(buf []byte) bool {
			return bytes.Contains(buf, ProgramTerminator)
		}
	default:
		return func(buf []byte) bool {
			return bytes.IndexByte(buf, AckByte) >= 0
		}
	}
}

// Decode parses raw response bytes into the structured Response the given
// command declares. It performs no I/O. A response that does not match the
// command's shape fails with a *ProtocolError: KindTruncated when the
// bytes end before the declared terminator or field count, and
// KindUnexpectedResponse for anything else off-contract.
func Decode(cmd Command, raw []byte) (*Response, error) {
	if !cmd.valid() {
		return nil, &ProtocolError{Command: cmd, Kind: KindUnexpectedResponse, Detail: "unknown command"}
	}

	shape := cmd.Shape()
	resp := &Response{Command: cmd, Shape: shape}

	switch shape {
	case ShapeAck:
		if err := decodeAck(cmd, raw); err != nil {
			return nil, err
		}
	case ShapeRegisters:
		regs, err := decodeRegisters(cmd, raw)
		if err != nil {
			return nil, err
		}
		resp.Registers = regs
	case ShapeProgram:
		prog, err := decodeProgram(cmd, raw)
		if err != nil {
			return nil, err
		}
		resp.Program = prog
	}

	return resp, nil
}

// decodeAck accepts exactly the single AckByte delimiter character.
func decodeAck(cmd Command, raw []byte) error {
	body := trimPadding(raw)
	if len(body) == 0 {
		return &ProtocolError{Command: cmd, Kind: KindTruncated, Detail: "no acknowledgement received"}
	}
	if len(body) != 1 || body[0] != AckByte {
		return &ProtocolError{
			Command: cmd,
			Kind:    KindUnexpectedResponse,
			Detail:  fmt.Sprintf("expected acknowledgement %q, got %q", AckByte, body),
		}
	}
	return nil
}

// decodeRegisters splits a terminated register dump into NumRegisters
// signed values.
func decodeRegisters(cmd Command, raw []byte) (RegisterSet, error) {
	var regs RegisterSet

	end := bytes.IndexByte(raw, FrameTerminator)
	if end < 0 {
		return regs, &ProtocolError{Command: cmd, Kind: KindTruncated, Detail: "no terminator in register dump"}
	}
	if rest := trimPadding(raw[end+1:]); len(rest) > 0 {
		return regs, &ProtocolError{
			Command: cmd,
			Kind:    KindUnexpectedResponse,
			Detail:  fmt.Sprintf("trailing bytes after terminator: %q", rest),
		}
	}

	body := trimPadding(raw[:end])
	if len(body) == 0 {
		return regs, &ProtocolError{
			Command: cmd,
			Kind:    KindTruncated,
			Detail:  fmt.Sprintf("got 0 of %d register fields", NumRegisters),
		}
	}

	fields := bytes.Split(body, []byte{FieldSeparator})
	if len(fields) < NumRegisters {
		return regs, &ProtocolError{
			Command: cmd,
			Kind:    KindTruncated,
			Detail:  fmt.Sprintf("got %d of %d register fields", len(fields), NumRegisters),
		}
	}
	if len(fields) > NumRegisters {
		return regs, &ProtocolError{
			Command: cmd,
			Kind:    KindUnexpectedResponse,
			Detail:  fmt.Sprintf("got %d register fields, expected %d", len(fields), NumRegisters),
		}
	}

	for i, f := range fields {
		v, err := parseRegisterField(f)
		if err != nil {
			return regs, &ProtocolError{
				Command: cmd,
				Kind:    KindUnexpectedResponse,
				Detail:  fmt.Sprintf("register field %d is not a valid value: %q", i, f),
			}
		}
		regs[i] = v
	}

	return regs, nil
}

// decodeProgram accumulates the blob up to ProgramTerminator. The payload
// is opaque and is copied out so the caller owns it.
func decodeProgram(cmd Command, raw []byte) (Program, error) {
	end := bytes.Index(raw, ProgramTerminator)
	if end < 0 {
		return nil, &ProtocolError{Command: cmd, Kind: KindTruncated, Detail: "program terminator not observed"}
	}
	if rest := trimPadding(raw[end+len(ProgramTerminator):]); len(rest) > 0 {
		return nil, &ProtocolError{
			Command: cmd,
			Kind:    KindUnexpectedResponse,
			Detail:  fmt.Sprintf("trailing bytes after program terminator: %q", rest),
		}
	}

	prog := make(Program, end)
	copy(prog, raw[:end])
	return prog, nil
}
