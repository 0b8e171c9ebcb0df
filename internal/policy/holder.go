package policy

import "sync"

// Holder is the shared, hot-swappable view of the current policy.
// Readers get a copy; the reloader replaces it atomically.
type Holder struct {
	mu sync.RWMutex
	p  Policy
}

// NewHolder creates a holder seeded with p.
func NewHolder(p Policy) *Holder {
	return &Holder{p: p}
}

// Current returns the active policy.
func (h *Holder) Current() Policy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.p
}

// Replace swaps in a new policy.
func (h *Holder) Replace(p Policy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.p = p
}
