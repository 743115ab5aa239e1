// Package traj moves arms and grippers between poses by streaming linearly
// interpolated setpoints at a fixed timestep.
//
// Playback is open loop and blocking: a move occupies the calling goroutine
// for steps × timestep and runs to completion unless a dispatch fails, in
// which case the error propagates and the remaining steps are not executed.
// Commands already issued are not rolled back.
package traj

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrShapeMismatch is returned when actuator and target counts (or joint
// vector lengths) disagree. It is returned before any command is dispatched.
var ErrShapeMismatch = errors.New("actuator/target shape mismatch")

const (
	// DefaultStep is the rig control period (50 Hz).
	DefaultStep = 20 * time.Millisecond

	// DefaultMoveDuration is the default time for a pose-to-pose move.
	DefaultMoveDuration = time.Second
)

// ArmActuator is a multi-joint actuator accepting position setpoints.
type ArmActuator interface {
	// JointPositions returns the current arm joint positions.
	JointPositions(ctx context.Context) ([]float64, error)
	// SetJointPositions commands the arm joints, fire-and-forget.
	SetJointPositions(ctx context.Context, pos []float64) error
}

// GripperActuator is a single-value actuator accepting position setpoints.
type GripperActuator interface {
	// GripperPosition returns the current gripper position.
	GripperPosition(ctx context.Context) (float64, error)
	// SetGripperPosition commands the gripper.
	SetGripperPosition(ctx context.Context, pos float64) error
}

// Steps returns the waypoint count for a move: floor(duration/step), at least
// one. A move shorter than one timestep degenerates to a single immediate
// step to the target.
func Steps(duration, step time.Duration) int {
	if step <= 0 {
		return 1
	}
	n := int(duration / step)
	if n < 1 {
		n = 1
	}
	return n
}

// Linspace returns n vectors evenly spaced from start to end, inclusive of
// both. For n == 1 the single waypoint is the end vector, so a degenerate
// move still reaches its target.
func Linspace(start, end []float64, n int) ([][]float64, error) {
	if len(start) != len(end) {
		return nil, fmt.Errorf("%w: start has %d joints, end has %d", ErrShapeMismatch, len(start), len(end))
	}
	if n < 1 {
		n = 1
	}
	if n == 1 {
		return [][]float64{append([]float64(nil), end...)}, nil
	}

	out := make([][]float64, n)
	for i := range out {
		frac := float64(i) / float64(n-1)
		wp := make([]float64, len(start))
		for j := range wp {
			wp[j] = start[j] + (end[j]-start[j])*frac
		}
		out[i] = wp
	}
	return out, nil
}

// MoveArms drives every arm from its current pose to its target pose over
// duration, issuing one waypoint per arm per step. All arms advance in
// lockstep: every arm receives waypoint t before any arm receives t+1.
func MoveArms(ctx context.Context, arms []ArmActuator, targets [][]float64, duration, step time.Duration) error {
	if len(arms) != len(targets) {
		return fmt.Errorf("%w: %d arms, %d targets", ErrShapeMismatch, len(arms), len(targets))
	}

	n := Steps(duration, step)
	paths := make([][][]float64, len(arms))
	for i, arm := range arms {
		cur, err := arm.JointPositions(ctx)
		if err != nil {
			return fmt.Errorf("read arm %d positions: %w", i, err)
		}
		paths[i], err = Linspace(cur, targets[i], n)
		if err != nil {
			return fmt.Errorf("arm %d: %w", i, err)
		}
	}

	for t := 0; t < n; t++ {
		for i, arm := range arms {
			if err := arm.SetJointPositions(ctx, paths[i][t]); err != nil {
				return fmt.Errorf("dispatch arm %d step %d: %w", i, t, err)
			}
		}
		time.Sleep(step)
	}
	return nil
}

// MoveGrippers drives every gripper from its current position to its target
// over duration, re-sending a single-value setpoint per gripper per step.
func MoveGrippers(ctx context.Context, grippers []GripperActuator, targets []float64, duration, step time.Duration) error {
	if len(grippers) != len(targets) {
		return fmt.Errorf("%w: %d grippers, %d targets", ErrShapeMismatch, len(grippers), len(targets))
	}

	n := Steps(duration, step)
	paths := make([][][]float64, len(grippers))
	for i, g := range grippers {
		cur, err := g.GripperPosition(ctx)
		if err != nil {
			return fmt.Errorf("read gripper %d position: %w", i, err)
		}
		paths[i], err = Linspace([]float64{cur}, []float64{targets[i]}, n)
		if err != nil {
			return fmt.Errorf("gripper %d: %w", i, err)
		}
	}

	for t := 0; t < n; t++ {
		for i, g := range grippers {
			if err := g.SetGripperPosition(ctx, paths[i][t][0]); err != nil {
				return fmt.Errorf("dispatch gripper %d step %d: %w", i, t, err)
			}
		}
		time.Sleep(step)
	}
	return nil
}
