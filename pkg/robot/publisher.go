package robot

import (
	"context"
	"time"

	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/msg"
)

// StateSource reads a full position vector. *Arm satisfies it.
type StateSource interface {
	Positions(ctx context.Context) ([]float64, error)
}

// StatePublisher polls an arm at a fixed period and publishes its joint
// state on the rig bus, so recorders have a producer to subscribe to.
type StatePublisher struct {
	Source StateSource
	Bus    *bus.Bus
	Side   string        // follower side, used in the topic name
	Period time.Duration // poll period; 20ms when zero
}

// Run polls and publishes until ctx is done. Read errors skip the tick; the
// publisher keeps going so a transient bus glitch does not kill telemetry.
func (p *StatePublisher) Run(ctx context.Context) error {
	period := p.Period
	if period <= 0 {
		period = 20 * time.Millisecond
	}

	topic := msg.JointStatesTopic(p.Side)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			positions, err := p.Source.Positions(ctx)
			if err != nil {
				continue
			}
			now := time.Now()
			p.Bus.Publish(topic, now, msg.JointState{
				Name:     JointNames(),
				Position: positions,
				Stamp:    now,
			})
		}
	}
}
