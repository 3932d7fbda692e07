package register

// minHistoryAlloc is the first allocation made for a non-empty ring.
const minHistoryAlloc = 16

// history is a capacity-capped ring of applied deltas.
//
// The backing slice grows lazily (doubling) until it reaches limit, so a
// register that only ever sees a handful of deltas never pays for the full
// bound. Once full, pushes overwrite the oldest slot.
type history[W Word] struct {
	buf   []W
	head  int // index of the oldest retained delta
	n     int // number of retained deltas
	limit int
}

func newHistory[W Word](limit int) history[W] {
	if limit < 0 {
		limit = 0
	}
	return history[W]{limit: limit}
}

// push appends v at the tail. Returns true if the oldest delta was evicted
// to make room (always true when limit is 0).
func (h *history[W]) push(v W) bool {
	if h.limit == 0 {
		return true
	}
	if h.n == h.limit {
		// Full: len(h.buf) == h.limit here, overwrite the head and advance.
		h.buf[h.head] = v
		h.head = (h.head + 1) % len(h.buf)
		return true
	}
	if h.n == len(h.buf) {
		h.grow()
	}
	h.buf[(h.head+h.n)%len(h.buf)] = v
	h.n++
	return false
}

// popBack removes and returns the newest delta.
func (h *history[W]) popBack() (W, bool) {
	if h.n == 0 {
		var zero W
		return zero, false
	}
	idx := (h.head + h.n - 1) % len(h.buf)
	v := h.buf[idx]
	h.n--
	if h.n == 0 {
		h.head = 0
	}
	return v, true
}

// clear drops every retained delta. The backing slice is kept for reuse.
func (h *history[W]) clear() {
	h.head = 0
	h.n = 0
}

// size returns the number of retained deltas.
func (h *history[W]) size() int {
	return h.n
}

// values returns the retained deltas oldest first.
func (h *history[W]) values() []W {
	out := make([]W, h.n)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// grow re-linearizes the ring into a larger backing slice, capped at limit.
func (h *history[W]) grow() {
	size := len(h.buf) * 2
	if size < minHistoryAlloc {
		size = minHistoryAlloc
	}
	if size > h.limit {
		size = h.limit
	}
	buf := make([]W, size)
	for i := 0; i < h.n; i++ {
		buf[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	h.buf = buf
	h.head = 0
}
