package program

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// Image file format constants.
const (
	// Magic identifies a taught-program image file
	Magic = "TMV1"

	// HeaderLength is the header line length in characters: magic + 4 hex
	// digits of program length
	HeaderLength = 8

	// LineHeaderBytes is the decoded size of a data line's offset and count fields
	LineHeaderBytes = 3

	// LineChecksumBytes is the decoded size of a data line's checksum field
	LineChecksumBytes = 1

	// MaxLineDataBytes is the number of data bytes Save packs per line
	MaxLineDataBytes = 32

	// MaxProgramBytes is the largest program the format can describe
	MaxProgramBytes = 0xFFFF
)

// Save writes a taught program to an image file at path.
func Save(path string, prog protocol.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := Write(f, prog); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write writes a taught program image to any io.Writer.
func Write(w io.Writer, prog protocol.Program) error {
	if len(prog) > MaxProgramBytes {
		return fmt.Errorf("program too large: %d bytes, maximum is %d", len(prog), MaxProgramBytes)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s%04X\n", Magic, len(prog)); err != nil {
		return err
	}

	for off := 0; off < len(prog); off += MaxLineDataBytes {
		end := off + MaxLineDataBytes
		if end > len(prog) {
			end = len(prog)
		}
		chunk := prog[off:end]

		line := make([]byte, 0, LineHeaderBytes+len(chunk)+LineChecksumBytes)
		line = append(line, byte(off>>8), byte(off), byte(len(chunk)))
		line = append(line, chunk...)
		line = append(line, lineChecksum(line))

		if _, err := fmt.Fprintf(bw, "%s\n", strings.ToUpper(hex.EncodeToString(line))); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load reads a taught program from an image file at path.
//
// Example:
//
//	prog, err := program.Load("arm-demo.tmv")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(path string) (protocol.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(f)
}

// LoadReader reads a taught program image from any io.Reader.
func LoadReader(r io.Reader) (protocol.Program, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("empty file")
	}

	declared, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	prog := make(protocol.Program, 0, declared)
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		chunk, off, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if off != len(prog) {
			return nil, fmt.Errorf("line %d: offset 0x%04X is not contiguous, expected 0x%04X", lineNum, off, len(prog))
		}

		prog = append(prog, chunk...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if len(prog) != declared {
		return nil, fmt.Errorf("length mismatch: header declares %d bytes, lines carry %d", declared, len(prog))
	}

	return prog, nil
}

// parseHeader validates the magic and extracts the declared program length.
func parseHeader(line string) (int, error) {
	line = strings.TrimSpace(line)
	if len(line) != HeaderLength {
		return 0, fmt.Errorf("invalid header length: got %d characters, expected %d", len(line), HeaderLength)
	}
	if !strings.HasPrefix(line, Magic) {
		return 0, fmt.Errorf("invalid magic: got %q, expected %q", line[:len(Magic)], Magic)
	}

	declared, err := strconv.ParseUint(line[len(Magic):], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid length field: %w", err)
	}
	return int(declared), nil
}

// parseLine decodes and validates one hex data line, returning the data
// bytes and the line's declared offset.
func parseLine(line string) ([]byte, int, error) {
	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid hex data: %w", err)
	}

	if len(data) < LineHeaderBytes+LineChecksumBytes {
		return nil, 0, fmt.Errorf("line too short: got %d bytes, minimum is %d", len(data), LineHeaderBytes+LineChecksumBytes)
	}

	off := int(data[0])<<8 | int(data[1])
	count := int(data[2])

	expected := LineHeaderBytes + count + LineChecksumBytes
	if len(data) != expected {
		return nil, 0, fmt.Errorf("length mismatch: got %d bytes, expected %d (header=%d + data=%d + checksum=%d)",
			len(data), expected, LineHeaderBytes, count, LineChecksumBytes)
	}

	sum := data[len(data)-1]
	if want := lineChecksum(data[:len(data)-1]); sum != want {
		return nil, 0, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", sum, want)
	}

	chunk := make([]byte, count)
	copy(chunk, data[LineHeaderBytes:LineHeaderBytes+count])

	return chunk, off, nil
}

// lineChecksum computes the 8-bit checksum of a line: byte sum, two's
// complement.
func lineChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
