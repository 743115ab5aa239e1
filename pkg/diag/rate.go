// Package diag estimates arrival rates from recorded message timestamps.
package diag

import (
	"errors"
	"time"
)

// ErrInsufficientSamples is returned when a rate estimate is requested for
// fewer than two timestamps.
var ErrInsufficientSamples = errors.New("need at least 2 timestamps to estimate a rate")

// Rate is the result of a rate estimate over a timestamp sequence.
type Rate struct {
	Interval time.Duration // mean inter-arrival interval
	Hz       float64       // 1 / Interval
}

// Estimate computes the arithmetic mean of consecutive differences in stamps
// and its reciprocal frequency. The stamps must be in arrival order.
func Estimate(stamps []time.Time) (Rate, error) {
	if len(stamps) < 2 {
		return Rate{}, ErrInsufficientSamples
	}

	var total time.Duration
	for i := 1; i < len(stamps); i++ {
		total += stamps[i].Sub(stamps[i-1])
	}
	mean := total / time.Duration(len(stamps)-1)
	if mean <= 0 {
		return Rate{Interval: mean}, nil
	}

	return Rate{
		Interval: mean,
		Hz:       1 / mean.Seconds(),
	}, nil
}

// StreamRate is one row of a per-stream diagnostics report. Available is
// false when the stream has not yet recorded enough timestamps for an
// estimate.
type StreamRate struct {
	Stream    string
	Samples   int
	Rate      Rate
	Available bool
}
