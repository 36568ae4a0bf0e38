package driver

import (
	"math"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// Axis identifies one stepper axis, in the order STEP and READ use.
type Axis int

const (
	// AxisBase is motor 1, the base rotation
	AxisBase Axis = iota

	// AxisShoulder is motor 2
	AxisShoulder

	// AxisElbow is motor 3
	AxisElbow

	// AxisWristRight is motor 4; the wrist motors also drive the gripper
	// differentially
	AxisWristRight

	// AxisWristLeft is motor 5
	AxisWristLeft
)

func (a Axis) String() string {
	if a < 0 || int(a) >= protocol.NumAxes {
		return "unknown axis"
	}
	return axisTable[a].Name
}

// AxisInfo holds the gearing constants of one stepper axis, per the
// TeachMover reference manual.
type AxisInfo struct {
	// Name is the human-readable axis name
	Name string

	// StepsPerRev is full steps per joint revolution
	StepsPerRev int

	// StepsPerRadian is steps per radian of joint movement
	StepsPerRadian float64

	// StepsPerDegree is steps per degree of joint movement
	StepsPerDegree float64
}

var axisTable = [protocol.NumAxes]AxisInfo{
	AxisBase:       {Name: "base", StepsPerRev: 7072, StepsPerRadian: 1125, StepsPerDegree: 19.64},
	AxisShoulder:   {Name: "shoulder", StepsPerRev: 7072, StepsPerRadian: 1125, StepsPerDegree: 19.64},
	AxisElbow:      {Name: "elbow", StepsPerRev: 4158, StepsPerRadian: 661.2, StepsPerDegree: 11.55},
	AxisWristRight: {Name: "wrist-right", StepsPerRev: 1536, StepsPerRadian: 241, StepsPerDegree: 4.27},
	AxisWristLeft:  {Name: "wrist-left", StepsPerRev: 1536, StepsPerRadian: 241, StepsPerDegree: 4.27},
}

// Info returns the gearing constants for the axis.
func (a Axis) Info() AxisInfo {
	if a < 0 || int(a) >= protocol.NumAxes {
		return AxisInfo{}
	}
	return axisTable[a]
}

// StepsForDegrees converts a joint angle in degrees to the nearest whole
// step count for this axis. Callers compose these into STEP deltas;
// coordinate-space motion planning is out of scope.
func (a Axis) StepsForDegrees(deg float64) int {
	return int(math.Round(deg * a.Info().StepsPerDegree))
}

// StepsForRadians converts a joint angle in radians to the nearest whole
// step count for this axis.
func (a Axis) StepsForRadians(rad float64) int {
	return int(math.Round(rad * a.Info().StepsPerRadian))
}
