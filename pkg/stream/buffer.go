// Package stream keeps the most recently received sample for each of several
// named streams.
//
// Each stream has exactly one producer (its bus handler); any goroutine may
// read. A Buffer holds only the latest sample per stream, plus an optional
// bounded timestamp history used for rate diagnostics.
package stream

import (
	"sort"
	"sync"
	"time"

	"github.com/openteleop/bimanual/pkg/diag"
)

// Sample is one recorded value with its arrival stamp.
type Sample[T any] struct {
	Value T
	Stamp time.Time
}

// Buffer holds the last sample per named stream.
type Buffer[T any] struct {
	mu      sync.RWMutex
	samples map[string]Sample[T]
	history map[string]*diag.History
	histCap int
}

// Option configures a Buffer.
type Option func(*options)

type options struct {
	histCap int
}

// WithHistory enables the per-stream timestamp history used by Rates.
func WithHistory(capacity int) Option {
	return func(o *options) { o.histCap = capacity }
}

// New creates an empty buffer. All streams start unset.
func New[T any](opts ...Option) *Buffer[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b := &Buffer[T]{
		samples: make(map[string]Sample[T]),
		histCap: o.histCap,
	}
	if o.histCap > 0 {
		b.history = make(map[string]*diag.History)
	}
	return b
}

// Update overwrites the stream's current sample and, when history is enabled,
// records the stamp.
func (b *Buffer[T]) Update(id string, value T, stamp time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples[id] = Sample[T]{Value: value, Stamp: stamp}
	if b.history != nil {
		h, ok := b.history[id]
		if !ok {
			h = diag.NewHistory(b.histCap)
			b.history[id] = h
		}
		h.Push(stamp)
	}
}

// Get returns the stream's latest sample. ok is false if the stream has not
// been updated yet.
func (b *Buffer[T]) Get(id string) (s Sample[T], ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok = b.samples[id]
	return s, ok
}

// Snapshot returns the latest sample for every stream updated so far.
func (b *Buffer[T]) Snapshot() map[string]Sample[T] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Sample[T], len(b.samples))
	for id, s := range b.samples {
		out[id] = s
	}
	return out
}

// Rates reports the estimated arrival rate per stream with recorded history,
// sorted by stream id. Streams with fewer than two stamps are reported as not
// yet available.
func (b *Buffer[T]) Rates() []diag.StreamRate {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]diag.StreamRate, 0, len(b.history))
	for id, h := range b.history {
		row := diag.StreamRate{Stream: id, Samples: h.Len()}
		if r, err := h.Rate(); err == nil {
			row.Rate = r
			row.Available = true
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stream < out[j].Stream })
	return out
}
