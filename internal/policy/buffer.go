package policy

// history is a fixed-capacity FIFO of samples. Pushing at capacity evicts the
// oldest value, so Len never exceeds the capacity given at construction.
type history struct {
	buf   []float64
	start int
	n     int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest one when full.
func (h *history) Push(v float64) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = v
		h.n++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history) Len() int { return h.n }

// Last returns the most recently pushed sample, if any.
func (h *history) Last() (float64, bool) {
	if h.n == 0 {
		return 0, false
	}
	return h.buf[(h.start+h.n-1)%len(h.buf)], true
}

// Sum totals the retained samples.
func (h *history) Sum() float64 {
	var sum float64
	for i := 0; i < h.n; i++ {
		sum += h.buf[(h.start+i)%len(h.buf)]
	}
	return sum
}

// Values returns the retained samples oldest-first in a fresh slice.
func (h *history) Values() []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
