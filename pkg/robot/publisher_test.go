package robot

import (
	"context"
	"testing"
	"time"

	"github.com/openteleop/bimanual/pkg/bus"
	"github.com/openteleop/bimanual/pkg/msg"
)

type fakeSource struct {
	positions []float64
}

func (f *fakeSource) Positions(ctx context.Context) ([]float64, error) {
	return f.positions, nil
}

func TestStatePublisher_PublishesJointStates(t *testing.T) {
	rigBus := bus.New()
	defer rigBus.Close()

	got := make(chan msg.JointState, 8)
	_, err := rigBus.Subscribe(msg.JointStatesTopic(Left), func(m bus.Message) {
		if js, ok := m.Payload.(msg.JointState); ok {
			got <- js
		}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	src := &fakeSource{positions: []float64{1, 2, 3, 4, 5, 6, 7}}
	pub := &StatePublisher{
		Source: src,
		Bus:    rigBus,
		Side:   Left,
		Period: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	select {
	case js := <-got:
		if len(js.Position) != 7 {
			t.Fatalf("got %d positions, want 7", len(js.Position))
		}
		if js.Position[NumArmJoints] != 7 {
			t.Errorf("gripper position = %v, want 7", js.Position[NumArmJoints])
		}
		if len(js.Name) != 7 || js.Name[0] != string(Waist) || js.Name[6] != string(Gripper) {
			t.Errorf("unexpected joint names: %v", js.Name)
		}
		if js.Stamp.IsZero() {
			t.Error("joint state must carry a stamp")
		}
	case <-time.After(time.Second):
		t.Fatal("no joint state published")
	}
}
