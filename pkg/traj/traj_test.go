package traj

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchLog records every issued command across actuators, in order.
type dispatchLog struct {
	mu      sync.Mutex
	entries []dispatchEntry
}

type dispatchEntry struct {
	actuator int
	pos      []float64
}

func (l *dispatchLog) add(actuator int, pos []float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, dispatchEntry{actuator: actuator, pos: append([]float64(nil), pos...)})
}

type fakeArm struct {
	id      int
	current []float64
	log     *dispatchLog
	failAt  int // fail on the nth dispatch (1-based), 0 = never
	sent    int
}

func (f *fakeArm) JointPositions(ctx context.Context) ([]float64, error) {
	return append([]float64(nil), f.current...), nil
}

func (f *fakeArm) SetJointPositions(ctx context.Context, pos []float64) error {
	f.sent++
	if f.failAt > 0 && f.sent == f.failAt {
		return errors.New("servo fault")
	}
	f.log.add(f.id, pos)
	return nil
}

type fakeGripper struct {
	id      int
	current float64
	log     *dispatchLog
}

func (f *fakeGripper) GripperPosition(ctx context.Context) (float64, error) {
	return f.current, nil
}

func (f *fakeGripper) SetGripperPosition(ctx context.Context, pos float64) error {
	f.log.add(f.id, []float64{pos})
	return nil
}

func TestLinspace_Endpoints(t *testing.T) {
	start := []float64{0, -10, 5}
	end := []float64{1, 10, -5}

	for _, n := range []int{2, 3, 17, 50} {
		path, err := Linspace(start, end, n)
		require.NoError(t, err)
		require.Len(t, path, n)
		assert.Equal(t, start, path[0], "n=%d: first waypoint must equal start", n)
		assert.Equal(t, end, path[n-1], "n=%d: last waypoint must equal end", n)
	}
}

func TestLinspace_SingleStepIsTarget(t *testing.T) {
	path, err := Linspace([]float64{3}, []float64{7}, 1)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, []float64{7}, path[0])
}

func TestLinspace_ShapeMismatch(t *testing.T) {
	_, err := Linspace([]float64{1, 2}, []float64{1}, 5)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSteps(t *testing.T) {
	tests := []struct {
		duration time.Duration
		step     time.Duration
		want     int
	}{
		{time.Second, 20 * time.Millisecond, 50},
		{time.Second, time.Second, 1},
		{10 * time.Millisecond, 20 * time.Millisecond, 1}, // shorter than one step
		{0, 20 * time.Millisecond, 1},
		{time.Second, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Steps(tt.duration, tt.step), "Steps(%v, %v)", tt.duration, tt.step)
	}
}

func TestMoveArms_WaypointScenario(t *testing.T) {
	// Same 50-step shape as a 1.0s move at the 20ms control period, with
	// the timestep scaled down so the test does not sleep for a second.
	// Waypoint 25 of a 0->6 move is ~3.06 (inclusive spacing over 50
	// points), midway through the path.
	log := &dispatchLog{}
	arm := &fakeArm{current: []float64{0, 0, 0, 0, 0, 0}, log: log}

	target := []float64{6, 6, 6, 6, 6, 6}
	err := MoveArms(context.Background(), []ArmActuator{arm}, [][]float64{target}, 50*time.Microsecond, time.Microsecond)
	require.NoError(t, err)

	require.Len(t, log.entries, 50)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, log.entries[0].pos)
	assert.Equal(t, target, log.entries[49].pos)
	for _, v := range log.entries[25].pos {
		assert.InDelta(t, 3.0, v, 0.07)
	}
}

func TestMoveArms_LockstepAcrossActuators(t *testing.T) {
	log := &dispatchLog{}
	a := &fakeArm{id: 0, current: []float64{0}, log: log}
	b := &fakeArm{id: 1, current: []float64{10}, log: log}

	err := MoveArms(context.Background(),
		[]ArmActuator{a, b},
		[][]float64{{4}, {14}},
		5*time.Microsecond, time.Microsecond)
	require.NoError(t, err)

	// Every step issues actuator 0 then actuator 1 before advancing
	require.Len(t, log.entries, 10)
	for i, e := range log.entries {
		assert.Equal(t, i%2, e.actuator, "entry %d", i)
	}

	// Both actuators advance one waypoint per step
	for step := 0; step < 5; step++ {
		frac := float64(step) / 4
		assert.InDelta(t, 4*frac, log.entries[2*step].pos[0], 1e-9)
		assert.InDelta(t, 10+4*frac, log.entries[2*step+1].pos[0], 1e-9)
	}
}

func TestMoveArms_ShapeMismatchBeforeDispatch(t *testing.T) {
	log := &dispatchLog{}
	arm := &fakeArm{current: []float64{0}, log: log}

	err := MoveArms(context.Background(), []ArmActuator{arm}, nil, time.Second, time.Millisecond)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Empty(t, log.entries, "no command may be issued on validation failure")

	// Joint-count mismatch surfaces before playback too
	err = MoveArms(context.Background(), []ArmActuator{arm}, [][]float64{{1, 2}}, time.Second, time.Millisecond)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Empty(t, log.entries)
}

func TestMoveArms_DispatchFailureAborts(t *testing.T) {
	log := &dispatchLog{}
	healthy := &fakeArm{id: 0, current: []float64{0}, log: log}
	faulty := &fakeArm{id: 1, current: []float64{0}, log: log, failAt: 3}

	err := MoveArms(context.Background(),
		[]ArmActuator{healthy, faulty},
		[][]float64{{1}, {1}},
		10*time.Microsecond, time.Microsecond)
	require.Error(t, err)

	// Steps 0 and 1 completed for both, step 2 issued to healthy then
	// failed on faulty; nothing after that.
	require.Len(t, log.entries, 5)
	assert.Equal(t, 3, healthy.sent)
	assert.Equal(t, 3, faulty.sent)
}

func TestMoveGrippers_ResendsPerStep(t *testing.T) {
	log := &dispatchLog{}
	left := &fakeGripper{id: 0, current: 0, log: log}
	right := &fakeGripper{id: 1, current: 100, log: log}

	err := MoveGrippers(context.Background(),
		[]GripperActuator{left, right},
		[]float64{100, 0},
		4*time.Microsecond, time.Microsecond)
	require.NoError(t, err)

	require.Len(t, log.entries, 8)
	// First step: current values; last step: targets
	assert.InDelta(t, 0, log.entries[0].pos[0], 1e-9)
	assert.InDelta(t, 100, log.entries[1].pos[0], 1e-9)
	assert.InDelta(t, 100, log.entries[6].pos[0], 1e-9)
	assert.InDelta(t, 0, log.entries[7].pos[0], 1e-9)
}

func TestMoveGrippers_ShapeMismatch(t *testing.T) {
	log := &dispatchLog{}
	g := &fakeGripper{log: log}

	err := MoveGrippers(context.Background(), []GripperActuator{g}, []float64{1, 2}, time.Second, time.Millisecond)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Empty(t, log.entries)
}
