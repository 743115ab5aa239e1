package recorder

import (
	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/diag"
	"github.com/openteleop/bimanual/pkg/msg"
	"github.com/openteleop/bimanual/pkg/robot"
	"github.com/openteleop/bimanual/pkg/stream"
)

// Stream names used by the joint recorder.
const (
	JointStatesStream    = "joint_states"
	ArmCommandStream     = "arm_command"
	GripperCommandStream = "gripper_command"
)

// JointRecorder keeps the most recent joint state and the most recent arm
// and gripper commands for one follower side.
type JointRecorder struct {
	side    string
	states  *stream.Buffer[msg.JointState]
	cmds    *stream.Buffer[[]float64]
	cancels []func()
}

// NewJointRecorder subscribes to the follower side's joint state and command
// topics on the given bus.
func NewJointRecorder(b *bus.Bus, side string, opts ...Option) (*JointRecorder, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &JointRecorder{
		side:   side,
		states: newBuffer[msg.JointState](o),
		cmds:   newBuffer[[]float64](o),
	}

	subs := []struct {
		topic   string
		handler bus.Handler
	}{
		{msg.JointStatesTopic(side), func(m bus.Message) {
			if js, ok := m.Payload.(msg.JointState); ok {
				r.states.Update(JointStatesStream, js, m.Stamp)
			}
		}},
		{msg.ArmCommandTopic(side), func(m bus.Message) {
			if cmd, ok := m.Payload.(msg.JointGroupCommand); ok {
				r.cmds.Update(ArmCommandStream, cmd.Cmd, m.Stamp)
			}
		}},
		{msg.GripperCommandTopic(side), func(m bus.Message) {
			if cmd, ok := m.Payload.(msg.JointSingleCommand); ok {
				r.cmds.Update(GripperCommandStream, []float64{cmd.Cmd}, m.Stamp)
			}
		}},
	}

	for _, s := range subs {
		cancel, err := b.Subscribe(s.topic, s.handler)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.cancels = append(r.cancels, cancel)
	}

	return r, nil
}

// Side returns the follower side this recorder observes.
func (r *JointRecorder) Side() string { return r.side }

// State returns the latest joint state. ok is false before the first update.
func (r *JointRecorder) State() (msg.JointState, bool) {
	s, ok := r.states.Get(JointStatesStream)
	return s.Value, ok
}

// ArmPositions returns the six arm joint positions from the latest joint
// state.
func (r *JointRecorder) ArmPositions() ([]float64, bool) {
	js, ok := r.State()
	if !ok || len(js.Position) < robot.NumArmJoints {
		return nil, false
	}
	return js.Position[:robot.NumArmJoints], true
}

// GripperPosition returns the gripper position from the latest joint state.
func (r *JointRecorder) GripperPosition() (float64, bool) {
	js, ok := r.State()
	if !ok || len(js.Position) <= robot.NumArmJoints {
		return 0, false
	}
	return js.Position[robot.NumArmJoints], true
}

// ArmCommand returns the latest commanded arm joint vector.
func (r *JointRecorder) ArmCommand() ([]float64, bool) {
	s, ok := r.cmds.Get(ArmCommandStream)
	return s.Value, ok
}

// GripperCommand returns the latest commanded gripper position.
func (r *JointRecorder) GripperCommand() (float64, bool) {
	s, ok := r.cmds.Get(GripperCommandStream)
	if !ok || len(s.Value) == 0 {
		return 0, false
	}
	return s.Value[0], true
}

// Rates reports arrival rates for the state and command streams. Empty
// unless the recorder was created with WithDebug.
func (r *JointRecorder) Rates() []diag.StreamRate {
	return append(r.states.Rates(), r.cmds.Rates()...)
}

// Close cancels all subscriptions.
func (r *JointRecorder) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}
