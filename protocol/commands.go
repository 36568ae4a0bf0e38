package protocol

import "strconv"

// Command identifies one of the eight firmware commands this driver
// implements. The set is closed: an opcode outside this enum cannot be
// encoded, so unsupported commands are a type-level absence rather than a
// runtime lookup miss.
type Command int

const (
	// CmdStep moves all steppers synchronously by per-axis step deltas
	CmdStep Command = iota

	// CmdClose closes the gripper
	CmdClose

	// CmdSet activates the handheld teach control
	CmdSet

	// CmdReset clears the internal position registers and shuts off motor current
	CmdReset

	// CmdRead reads the internal position registers
	CmdRead

	// CmdQDump dumps the taught program stored in device memory
	CmdQDump

	// CmdQWrite uploads a previously dumped program
	CmdQWrite

	// CmdRun runs the taught program stored in device memory
	CmdRun
)

// commandSpec fixes the wire properties of one command: its opcode byte,
// its parameter arity, and the shape of the response it produces.
type commandSpec struct {
	name   string
	opcode byte
	arity  int
	shape  ResponseShape
}

var commandSpecs = [...]commandSpec{
	CmdStep:   {name: "STEP", opcode: OpStep, arity: StepArity, shape: ShapeAck},
	CmdClose:  {name: "CLOSE", opcode: OpClose, arity: 0, shape: ShapeAck},
	CmdSet:    {name: "SET", opcode: OpSet, arity: 0, shape: ShapeAck},
	CmdReset:  {name: "RESET", opcode: OpReset, arity: 0, shape: ShapeAck},
	CmdRead:   {name: "READ", opcode: OpRead, arity: 0, shape: ShapeRegisters},
	CmdQDump:  {name: "QDUMP", opcode: OpQDump, arity: 0, shape: ShapeProgram},
	CmdQWrite: {name: "QWRITE", opcode: OpQWrite, arity: 0, shape: ShapeAck},
	CmdRun:    {name: "RUN", opcode: OpRun, arity: 0, shape: ShapeAck},
}

func (c Command) valid() bool {
	return c >= 0 && int(c) < len(commandSpecs)
}

// String returns the command name ("STEP", "READ", ...).
func (c Command) String() string {
	if !c.valid() {
		return "UNKNOWN(" + strconv.Itoa(int(c)) + ")"
	}
	return commandSpecs[c].name
}

// Opcode returns the single-character opcode byte the firmware recognizes.
func (c Command) Opcode() byte {
	if !c.valid() {
		return 0
	}
	return commandSpecs[c].opcode
}

// Arity returns the fixed number of numeric parameters the command takes.
func (c Command) Arity() int {
	if !c.valid() {
		return 0
	}
	return commandSpecs[c].arity
}

// Shape returns the response shape the command produces.
func (c Command) Shape() ResponseShape {
	if !c.valid() {
		return ShapeAck
	}
	return commandSpecs[c].shape
}

// Encode builds the outbound frame for a command.
//
// Frame structure:
//
//	[PREFIX][OPCODE][PARAM{,PARAM...}][TERMINATOR]
//
// Parameters are ASCII signed decimal, comma-separated. Encode performs
// no I/O and fails with *EncodingError if the parameter count does not
// match the command's arity or a parameter is outside the device's
// 16-bit representable range.
func Encode(cmd Command, params ...int) ([]byte, error) {
	if !cmd.valid() {
		return nil, &EncodingError{Command: cmd, Reason: "unknown command"}
	}

	spec := commandSpecs[cmd]
	if len(params) != spec.arity {
		return nil, &EncodingError{
			Command: cmd,
			Reason:  "requires exactly " + strconv.Itoa(spec.arity) + " parameters, got " + strconv.Itoa(len(params)),
		}
	}

	for _, p := range params {
		if p < ParamMin || p > ParamMax {
			return nil, &EncodingError{
				Command: cmd,
				Reason:  "parameter " + strconv.Itoa(p) + " outside device range [" + strconv.Itoa(ParamMin) + ", " + strconv.Itoa(ParamMax) + "]",
			}
		}
	}

	frame := make([]byte, 0, 3+7*len(params))
	frame = append(frame, FramePrefix, spec.opcode)
	for i, p := range params {
		if i > 0 {
			frame = append(frame, FieldSeparator)
		}
		frame = strconv.AppendInt(frame, int64(p), 10)
	}
	frame = append(frame, FrameTerminator)

	return frame, nil
}

// BuildStepCmd constructs a STEP frame from per-axis step deltas.
// Exactly StepArity deltas are required, one per stepper axis.
func BuildStepCmd(deltas []int) ([]byte, error) {
	return Encode(CmdStep, deltas...)
}

// BuildCloseCmd constructs a CLOSE frame.
func BuildCloseCmd() ([]byte, error) {
	return Encode(CmdClose)
}

// BuildSetCmd constructs a SET frame.
func BuildSetCmd() ([]byte, error) {
	return Encode(CmdSet)
}

// BuildResetCmd constructs a RESET frame.
func BuildResetCmd() ([]byte, error) {
	return Encode(CmdReset)
}

// BuildReadCmd constructs a READ frame.
func BuildReadCmd() ([]byte, error) {
	return Encode(CmdRead)
}

// BuildQDumpCmd constructs a QDUMP frame.
func BuildQDumpCmd() ([]byte, error) {
	return Encode(CmdQDump)
}

// BuildQWriteCmd constructs a QWRITE frame. The program bytes themselves
// are not part of the frame; the sequencer streams them after the frame,
// followed by ProgramTerminator.
func BuildQWriteCmd() ([]byte, error) {
	return Encode(CmdQWrite)
}

// BuildRunCmd constructs a RUN frame.
func BuildRunCmd() ([]byte, error) {
	return Encode(CmdRun)
}
