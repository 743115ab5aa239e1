// Package msg defines the message types exchanged over the rig bus and the
// topic names they travel on.
package msg

import "time"

// Image is one camera frame. Data is the raw sensor buffer in the given
// encoding; this module never decodes pixels, it only moves frames around.
type Image struct {
	Width    int
	Height   int
	Encoding string
	Data     []byte
	Stamp    time.Time
}

// JointState reports positions (and optionally velocities and efforts) for a
// set of named joints, as published by an arm's state publisher.
type JointState struct {
	Name     []string
	Position []float64
	Velocity []float64
	Effort   []float64
	Stamp    time.Time
}

// JointGroupCommand is a position setpoint for a named joint group.
type JointGroupCommand struct {
	Name string
	Cmd  []float64
}

// JointSingleCommand is a position setpoint for a single named joint. The
// gripper command stream re-sends one of these per playback step with only
// Cmd changing.
type JointSingleCommand struct {
	Name string
	Cmd  float64
}
