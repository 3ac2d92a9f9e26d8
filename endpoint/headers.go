package endpoint

import "sync"

// headerSet is the client's custom header map: last write wins per key,
// safe for concurrent insertion and concurrent snapshot during dispatch.
type headerSet struct {
	mu sync.RWMutex
	m  map[string]string
}

func newHeaderSet() *headerSet {
	return &headerSet{m: make(map[string]string)}
}

func (h *headerSet) merge(headers map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for k, v := range headers {
		h.m[k] = v
	}
}

func (h *headerSet) snapshot() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string, len(h.m))
	for k, v := range h.m {
		out[k] = v
	}
	return out
}

func (h *headerSet) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.m)
}
