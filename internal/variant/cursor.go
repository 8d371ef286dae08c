package variant

import "sync"

// CursorBridge tracks the per-record regeneration cursor for admin sessions:
// every "generate draft" click advances the cursor so repeated clicks walk
// through distinct phrasing variants. Keyed by the record's stable id so
// several admins can work in parallel without clashing.
type CursorBridge struct {
	mu            sync.Mutex
	cursors       map[string]int
	fallbackTotal int
}

// NewCursorBridge creates a bridge. fallbackTotal is the wrap-around modulus
// used when the trade's variant count is unknown or zero.
func NewCursorBridge(fallbackTotal int) *CursorBridge {
	if fallbackTotal <= 0 {
		fallbackTotal = 7
	}
	return &CursorBridge{
		cursors:       make(map[string]int),
		fallbackTotal: fallbackTotal,
	}
}

// Bump advances the cursor for a record and returns the new index in
// [0,total). A record never seen before starts at 0.
func (b *CursorBridge) Bump(id string, total int) int {
	if total <= 0 {
		total = b.fallbackTotal
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.cursors[id]
	if !ok {
		i = -1
	}
	i = (i + 1) % total
	b.cursors[id] = i
	return i
}

// Reset forgets the cursor for a record; the next Bump starts from 0.
func (b *CursorBridge) Reset(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.cursors, id)
}
