package diag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stampsEvery(d time.Duration, n int) []time.Time {
	base := time.Unix(1700000000, 0)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * d)
	}
	return out
}

func TestEstimate_ConstantSpacing(t *testing.T) {
	// 0.0, 0.1, 0.2, 0.3 -> 10 Hz
	r, err := Estimate(stampsEvery(100*time.Millisecond, 4))
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, r.Interval)
	assert.InDelta(t, 10.0, r.Hz, 1e-9)
}

func TestEstimate_MixedSpacing(t *testing.T) {
	base := time.Unix(1700000000, 0)
	stamps := []time.Time{
		base,
		base.Add(10 * time.Millisecond),
		base.Add(40 * time.Millisecond), // mean interval 20ms
	}
	r, err := Estimate(stamps)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, r.Interval)
	assert.InDelta(t, 50.0, r.Hz, 1e-9)
}

func TestEstimate_InsufficientSamples(t *testing.T) {
	_, err := Estimate(nil)
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = Estimate(stampsEvery(time.Millisecond, 1))
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestHistory_Eviction(t *testing.T) {
	h := NewHistory(3)
	stamps := stampsEvery(time.Second, 5)
	for _, s := range stamps {
		h.Push(s)
	}

	require.Equal(t, 3, h.Len())
	assert.Equal(t, stamps[2:], h.Stamps())
}

func TestHistory_Rate(t *testing.T) {
	h := NewHistory(50)
	for _, s := range stampsEvery(20*time.Millisecond, 10) {
		h.Push(s)
	}

	r, err := h.Rate()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, r.Hz, 1e-9)
}

func TestHistory_RateWhileEmpty(t *testing.T) {
	h := NewHistory(50)
	_, err := h.Rate()
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	h.Push(time.Now())
	_, err = h.Rate()
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}
