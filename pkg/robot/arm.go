package robot

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Arm is one 7-servo arm on a serial bus: six arm joints plus a gripper.
//
// Positions are normalized to [-100, 100] through the arm's calibration.
// Register-level driver operations (PID gains, operating modes, reboot) stay
// inside the servo driver and are not exposed here.
type Arm struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

// NewArm opens the serial bus and prepares the servo group for an arm.
func NewArm(cfg ArmConfig) (*Arm, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	ids := cfg.Calibration.MotorIDs()
	group := feetech.NewServoGroupByIDs(bus, ids...)

	return &Arm{
		bus:         bus,
		group:       group,
		calibration: cfg.Calibration,
	}, nil
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// SetupFollower configures an arm for the follower role: torque on so it
// holds and tracks commanded positions.
func (a *Arm) SetupFollower(ctx context.Context) error {
	if err := a.group.EnableAll(ctx); err != nil {
		return fmt.Errorf("enable follower torque: %w", err)
	}
	return nil
}

// SetupLeader configures an arm for the leader role: torque off so the
// operator can move it freely.
func (a *Arm) SetupLeader(ctx context.Context) error {
	if err := a.group.DisableAll(ctx); err != nil {
		return fmt.Errorf("disable leader torque: %w", err)
	}
	return nil
}

// TorqueOff releases all servos, including the gripper.
func (a *Arm) TorqueOff(ctx context.Context) error {
	return a.group.DisableAll(ctx)
}

// PositionsByName reads current normalized positions for all motors.
func (a *Arm) PositionsByName(ctx context.Context) (map[MotorName]float64, error) {
	rawPositions, err := a.group.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	positions := make(map[MotorName]float64, len(rawPositions))
	for id, raw := range rawPositions {
		name, cal, ok := a.calibration.ByID(id)
		if !ok {
			continue
		}
		positions[name] = cal.Normalize(raw)
	}

	return positions, nil
}

// Positions reads the full position vector in AllMotors order: six arm
// joints followed by the gripper at index 6.
func (a *Arm) Positions(ctx context.Context) ([]float64, error) {
	byName, err := a.PositionsByName(ctx)
	if err != nil {
		return nil, err
	}

	motors := AllMotors()
	out := make([]float64, len(motors))
	for i, name := range motors {
		pos, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no position reported for %s", name)
		}
		out[i] = pos
	}
	return out, nil
}

// JointPositions reads the six arm joint positions, excluding the gripper.
func (a *Arm) JointPositions(ctx context.Context) ([]float64, error) {
	all, err := a.Positions(ctx)
	if err != nil {
		return nil, err
	}
	return all[:NumArmJoints], nil
}

// GripperPosition reads the gripper position.
func (a *Arm) GripperPosition(ctx context.Context) (float64, error) {
	all, err := a.Positions(ctx)
	if err != nil {
		return 0, err
	}
	return all[NumArmJoints], nil
}

// SetJointPositions commands the six arm joints, fire-and-forget. The
// gripper is untouched.
func (a *Arm) SetJointPositions(ctx context.Context, positions []float64) error {
	motors := ArmMotors()
	if len(positions) != len(motors) {
		return fmt.Errorf("expected %d joint positions, got %d", len(motors), len(positions))
	}

	rawPositions := make(feetech.PositionMap, len(positions))
	for i, name := range motors {
		cal, ok := a.calibration[name]
		if !ok {
			return fmt.Errorf("no calibration for %s", name)
		}
		rawPositions[cal.ID] = cal.Denormalize(positions[i])
	}

	if err := a.group.SetPositions(ctx, rawPositions); err != nil {
		return fmt.Errorf("write joint positions: %w", err)
	}
	return nil
}

// SetGripperPosition commands the gripper alone.
func (a *Arm) SetGripperPosition(ctx context.Context, position float64) error {
	cal, ok := a.calibration[Gripper]
	if !ok {
		return fmt.Errorf("no calibration for %s", Gripper)
	}

	raw := feetech.PositionMap{cal.ID: cal.Denormalize(position)}
	if err := a.group.SetPositions(ctx, raw); err != nil {
		return fmt.Errorf("write gripper position: %w", err)
	}
	return nil
}
