package protocol

import "strconv"

// RegisterSet holds the device's internal position registers, one signed
// value per stepper axis, as reported by READ. A RegisterSet returned by
// the driver is a caller-owned snapshot; a successful RESET invalidates
// any previously read snapshot.
type RegisterSet [NumRegisters]int

// String renders the registers in the device's own comma-separated format.
func (r RegisterSet) String() string {
	s := ""
	for i, v := range r {
		if i > 0 {
			s += string(FieldSeparator)
		}
		s += strconv.Itoa(v)
	}
	return s
}

// Program is a taught motion program captured by QDUMP and replayable via
// QWRITE. The contents are opaque device bytes; this package never
// interprets them.
type Program []byte

// Clone returns an independent copy of the program bytes.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	c := make(Program, len(p))
	copy(c, p)
	return c
}
