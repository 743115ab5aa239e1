package diag

import "time"

// History is a fixed-capacity ring of timestamps. When full, pushing a new
// stamp evicts the oldest. The zero value is not usable; use NewHistory.
type History struct {
	stamps []time.Time
	head   int
	count  int
}

// DefaultHistorySize is the timestamp history depth used by the recorders.
const DefaultHistorySize = 50

// NewHistory returns a history that keeps the most recent capacity stamps.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{stamps: make([]time.Time, capacity)}
}

// Push appends a stamp, evicting the oldest when full.
func (h *History) Push(t time.Time) {
	h.stamps[(h.head+h.count)%len(h.stamps)] = t
	if h.count < len(h.stamps) {
		h.count++
	} else {
		h.head = (h.head + 1) % len(h.stamps)
	}
}

// Len returns the number of stamps currently held.
func (h *History) Len() int { return h.count }

// Stamps returns the held timestamps, oldest first.
func (h *History) Stamps() []time.Time {
	out := make([]time.Time, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.stamps[(h.head+i)%len(h.stamps)]
	}
	return out
}

// Rate estimates the arrival rate over the held stamps.
func (h *History) Rate() (Rate, error) {
	return Estimate(h.Stamps())
}
