package protocol

// The constants below are the wire-level contract of the TeachMover
// firmware command set. They are fixed by the device firmware; every
// encoder, decoder, and completion predicate in this package is derived
// from this table.

// Frame structure constants.
const (
	// FramePrefix starts every outbound command frame ('@')
	FramePrefix = '@'

	// FrameTerminator ends every outbound command frame and every
	// register-dump response (';')
	FrameTerminator = ';'

	// FieldSeparator separates numeric parameters and register fields (',')
	FieldSeparator = ','

	// AckByte is the single response character the device emits after a
	// command with no payload ('@')
	AckByte = '@'
)

// ProgramTerminator closes a program byte stream in both directions:
// the device emits it after the last QDUMP payload byte, and the host
// must send it after the last QWRITE payload byte.
var ProgramTerminator = []byte{FrameTerminator, AckByte}

// Opcode bytes per the TeachMover firmware command set.
const (
	// OpStep moves all steppers synchronously
	OpStep = 'S'

	// OpClose closes the gripper
	OpClose = 'C'

	// OpSet activates the handheld teach control
	OpSet = 'T'

	// OpReset clears the internal position registers and shuts off motor current
	OpReset = 'X'

	// OpRead reads the internal position registers
	OpRead = 'R'

	// OpQDump dumps the taught program stored in device memory
	OpQDump = 'D'

	// OpQWrite uploads a previously dumped program
	OpQWrite = 'W'

	// OpRun runs the taught program stored in device memory
	OpRun = 'G'
)

// Numeric format constants. Parameters and register values travel as
// ASCII signed decimal; the device stores them in 16-bit registers.
const (
	// ParamMin is the smallest value the device can represent
	ParamMin = -32768

	// ParamMax is the largest value the device can represent
	ParamMax = 32767
)

// Axis and register counts.
const (
	// NumAxes is the number of stepper axes driven by STEP
	// (base, shoulder, elbow, right wrist, left wrist)
	NumAxes = 5

	// NumRegisters is the number of internal position registers
	// reported by READ, one per axis
	NumRegisters = NumAxes

	// StepArity is the number of parameters STEP requires
	StepArity = NumAxes
)
