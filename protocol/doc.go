// Package protocol implements the Microbot TeachMover serial command set.
//
// This package is the pure codec layer: it builds outbound command frames
// and parses raw response bytes. It never touches a transport.
//
// # Protocol Overview
//
// The TeachMover firmware recognizes single-character ASCII commands:
//
//	Command:  [PREFIX][OPCODE][PARAM{,PARAM...}][TERMINATOR]
//	Ack:      [ACK]
//	Registers: [VAL{,VAL...}][TERMINATOR]
//	Program:  [BYTES...][PROGRAM TERMINATOR]
//
// Where:
//   - PREFIX = '@'
//   - TERMINATOR = ';'
//   - ACK = '@'
//   - PARAM/VAL = ASCII signed decimal, 16-bit range, ','-separated
//   - PROGRAM TERMINATOR = ";@"
//
// Example frames: "@R;" (READ), "@S100,200,0,0,50;" (STEP).
//
// The exact byte values are a fixed firmware contract; see constants.go.
//
// # Command Builders
//
// Use Encode or the Build* helpers to create frames:
//
//	frame, err := protocol.BuildStepCmd([]int{100, 200, 0, 0, 50})
//	frame, err := protocol.BuildReadCmd()
//	// ... etc
//
// # Response Decoding
//
// Decode parses raw bytes against the shape the issued command declares:
//
//	resp, err := protocol.Decode(protocol.CmdRead, raw)
//	if err != nil {
//	    // *protocol.ProtocolError: truncated or off-contract response
//	}
//	fmt.Println(resp.Registers)
//
// Complete returns the per-shape predicate that tells a reader when a
// full response unit has been accumulated.
//
// # Error Handling
//
// Two error types cover the codec layer:
//   - *EncodingError: bad input (arity, range) detected before any I/O
//   - *ProtocolError: a response off the device contract, classified as
//     KindTimeout, KindTruncated, or KindUnexpectedResponse
//
// Both support errors.As; the Is* helpers wrap the common checks.
package protocol
