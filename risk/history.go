package risk

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds the in-memory report history.
const DefaultHistoryCapacity = 500

// History is a fixed-capacity ring of reports ordered by insertion. When
// full, adding a report evicts the oldest one. Reports are deep-copied on the
// way in and out, so callers never share state with the ring.
type History struct {
	mu    sync.RWMutex
	buf   []Analysis
	start int
	n     int
}

// NewHistory returns a ring holding capacity reports; values below 1 use
// DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]Analysis, capacity)}
}

// Add appends a and reports whether an older report was evicted.
func (h *History) Add(a Analysis) (evicted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a = a.Clone()
	if h.n == len(h.buf) {
		h.buf[h.start] = a
		h.start = (h.start + 1) % len(h.buf)
		return true
	}
	h.buf[(h.start+h.n)%len(h.buf)] = a
	h.n++
	return false
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.n
}

func (h *History) Cap() int { return len(h.buf) }

// at must be called with mu held.
func (h *History) at(i int) Analysis {
	return h.buf[(h.start+i)%len(h.buf)]
}

// copyAt returns a deep copy of the i-th report; mu must be held.
func (h *History) copyAt(i int) Analysis {
	return h.at(i).Clone()
}

// Latest returns the newest report.
func (h *History) Latest() (Analysis, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.n == 0 {
		return Analysis{}, false
	}
	return h.copyAt(h.n - 1), true
}

// List returns all retained reports, oldest first.
func (h *History) List() []Analysis {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Analysis, h.n)
	for i := range out {
		out[i] = h.copyAt(i)
	}
	return out
}

// Get finds a report by id.
func (h *History) Get(id string) (Analysis, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := h.n - 1; i >= 0; i-- {
		if a := h.at(i); a.ID == id {
			return a.Clone(), true
		}
	}
	return Analysis{}, false
}

// At finds the newest report with exactly timestamp ts.
func (h *History) At(ts time.Time) (Analysis, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := h.n - 1; i >= 0; i-- {
		if a := h.at(i); a.Timestamp.Equal(ts) {
			return a.Clone(), true
		}
	}
	return Analysis{}, false
}

// Since returns reports with timestamps at or after t, oldest first.
func (h *History) Since(t time.Time) []Analysis {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Analysis
	for i := 0; i < h.n; i++ {
		if a := h.at(i); !a.Timestamp.Before(t) {
			out = append(out, a.Clone())
		}
	}
	return out
}
