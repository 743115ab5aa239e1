// Package teleop mirrors two leader arms onto two follower arms in real
// time.
package teleop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/msg"
	"github.com/openteleop/bimanual/pkg/robot"
	"github.com/openteleop/bimanual/pkg/traj"
)

// State is one control-loop observation for a single side.
type State struct {
	Side      string
	Positions map[robot.MotorName]float64
	Timestamp time.Time
	Error     error
}

// PairConfig describes one leader/follower arm pair.
type PairConfig struct {
	Leader   robot.ArmConfig
	Follower robot.ArmConfig
}

// Config holds configuration for the controller.
type Config struct {
	Left  PairConfig
	Right PairConfig
	Hz    int
	// Mirror inverts waist and wrist_rotate, for rigs where the leader
	// faces the operator.
	Mirror bool
	// Bus, when set, receives a copy of every issued follower command so
	// recorders can observe the command streams.
	Bus *bus.Bus
}

type pair struct {
	side     string
	leader   *robot.Arm
	follower *robot.Arm
}

// Controller manages the dual-arm teleoperation loop.
type Controller struct {
	pairs  []*pair
	hz     int
	mirror bool
	bus    *bus.Bus

	mu      sync.RWMutex
	running bool
	stateCh chan State
	logCh   chan string
}

// NewController opens all four arms. On any failure the arms opened so far
// are closed again.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}

	c := &Controller{
		hz:      cfg.Hz,
		mirror:  cfg.Mirror,
		bus:     cfg.Bus,
		stateCh: make(chan State, 2),
		logCh:   make(chan string, 10),
	}

	for _, pc := range []struct {
		side string
		cfg  PairConfig
	}{
		{robot.Left, cfg.Left},
		{robot.Right, cfg.Right},
	} {
		leader, err := robot.NewArm(pc.cfg.Leader)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("open %s leader: %w", pc.side, err)
		}
		follower, err := robot.NewArm(pc.cfg.Follower)
		if err != nil {
			leader.Close()
			c.Close()
			return nil, fmt.Errorf("open %s follower: %w", pc.side, err)
		}
		c.pairs = append(c.pairs, &pair{side: pc.side, leader: leader, follower: follower})
	}

	return c, nil
}

// Close closes all arm connections.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	var errs []error
	for _, p := range c.pairs {
		if err := p.leader.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := p.follower.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// States returns a channel that receives per-side state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.hz
}

func (c *Controller) log(format string, args ...any) {
	m := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- m:
	default:
		// Drop if channel full
	}
}

// Start configures torque, ramps the followers to the leaders' poses, and
// runs the mirroring loop until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	for _, p := range c.pairs {
		if err := p.leader.SetupLeader(ctx); err != nil {
			c.log("Warning: %s leader setup: %v", p.side, err)
		} else {
			c.log("%s leader: torque disabled (passive mode)", p.side)
		}
		if err := p.follower.SetupFollower(ctx); err != nil {
			c.log("Warning: %s follower setup: %v", p.side, err)
		} else {
			c.log("%s follower: torque enabled", p.side)
		}
	}

	if err := c.ramp(ctx); err != nil {
		c.shutdown()
		return fmt.Errorf("ramp to leader pose: %w", err)
	}

	c.log("Teleoperation started at %d Hz", c.hz)

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			for _, p := range c.pairs {
				c.step(ctx, p)
			}
		}
	}
}

// ramp smoothly moves each follower from wherever it is to its leader's
// current pose, arms first, then grippers, so mirroring starts without a
// jump.
func (c *Controller) ramp(ctx context.Context) error {
	arms := make([]traj.ArmActuator, 0, len(c.pairs))
	grippers := make([]traj.GripperActuator, 0, len(c.pairs))
	armTargets := make([][]float64, 0, len(c.pairs))
	gripTargets := make([]float64, 0, len(c.pairs))

	for _, p := range c.pairs {
		pose, err := p.leader.Positions(ctx)
		if err != nil {
			return fmt.Errorf("read %s leader pose: %w", p.side, err)
		}
		arms = append(arms, p.follower)
		grippers = append(grippers, p.follower)
		armTargets = append(armTargets, c.mapJoints(pose[:robot.NumArmJoints]))
		gripTargets = append(gripTargets, pose[robot.NumArmJoints])
	}

	if err := traj.MoveArms(ctx, arms, armTargets, traj.DefaultMoveDuration, traj.DefaultStep); err != nil {
		return err
	}
	return traj.MoveGrippers(ctx, grippers, gripTargets, traj.DefaultMoveDuration, traj.DefaultStep)
}

// mapJoints applies the mirror transform to a leader arm joint vector.
func (c *Controller) mapJoints(joints []float64) []float64 {
	out := append([]float64(nil), joints...)
	if c.mirror {
		motors := robot.ArmMotors()
		for i, name := range motors {
			if name == robot.Waist || name == robot.WristRotate {
				out[i] = -out[i]
			}
		}
	}
	return out
}

func (c *Controller) step(ctx context.Context, p *pair) {
	positions, err := p.leader.PositionsByName(ctx)
	if err != nil {
		c.log("%s read error: %v", p.side, err)
		c.sendState(State{Side: p.side, Error: err, Timestamp: time.Now()})
		return
	}

	joints := make([]float64, robot.NumArmJoints)
	for i, name := range robot.ArmMotors() {
		joints[i] = positions[name]
	}
	joints = c.mapJoints(joints)
	gripper := positions[robot.Gripper]

	if err := p.follower.SetJointPositions(ctx, joints); err != nil {
		c.log("%s arm write error: %v", p.side, err)
	} else if c.bus != nil {
		c.bus.Publish(msg.ArmCommandTopic(p.side), time.Now(), msg.JointGroupCommand{
			Name: "arm",
			Cmd:  joints,
		})
	}

	if err := p.follower.SetGripperPosition(ctx, gripper); err != nil {
		c.log("%s gripper write error: %v", p.side, err)
	} else if c.bus != nil {
		c.bus.Publish(msg.GripperCommandTopic(p.side), time.Now(), msg.JointSingleCommand{
			Name: string(robot.Gripper),
			Cmd:  gripper,
		})
	}

	c.sendState(State{
		Side:      p.side,
		Positions: positions,
		Timestamp: time.Now(),
	})
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	ctx := context.Background()
	for _, p := range c.pairs {
		if err := p.follower.TorqueOff(ctx); err != nil {
			c.log("Warning: %s follower torque off: %v", p.side, err)
		} else {
			c.log("%s follower: torque disabled", p.side)
		}
	}
	c.log("Teleoperation stopped")
}
