// Package program reads and writes taught-program image files.
//
// The driver treats a taught program as opaque bytes; this package gives
// those bytes a durable on-disk form so a program dumped from one arm can
// be re-uploaded later or to another arm. The device itself never sees
// this format.
//
// # Image File Format
//
// A text file: a header line followed by hex-encoded data lines.
//
// Header (8 characters):
//
//	TMV1[LENGTH(4)]
//
// where LENGTH is the total program byte count in uppercase hex.
//
// Data line (variable length, hex-encoded):
//
//	[OFFSET(4)][COUNT(2)][DATA(2*COUNT)][CHECKSUM(2)]
//
// OFFSET is the big-endian byte offset of the line's data within the
// program, COUNT the number of data bytes, and CHECKSUM the two's
// complement of the byte sum of offset, count, and data. Lines must be
// contiguous and in order.
//
// Example (a 4-byte program):
//
//	TMV10004
//	00000401027F10xx
//
// # Usage
//
//	prog, err := program.Load("arm-demo.tmv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = drv.WriteProgram(ctx, prog)
//
// Load returns detailed errors for malformed files: bad magic, length
// mismatches, checksum mismatches, and non-contiguous lines, each with
// the offending line number.
package program
