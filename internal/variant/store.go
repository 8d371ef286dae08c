package variant

import (
	"sync"
	"time"
)

// UsageStatus is the lifecycle state of an allocation record.
type UsageStatus string

const (
	StatusAssigned UsageStatus = "assigned"
	StatusReleased UsageStatus = "released"
)

// Usage is a variant allocation record. For a given (field, variant) pair at
// most one record with StatusAssigned exists at any time.
type Usage struct {
	FieldKey   string      `json:"field_key"`
	VariantID  string      `json:"variant_id"`
	WorkerID   string      `json:"worker_id"`
	AssignedAt time.Time   `json:"assigned_at"`
	Status     UsageStatus `json:"status"`
}

// Store abstracts the allocation table. Implementations must be safe for
// concurrent use; field keys are expected to be canonical (the Registry
// canonicalizes before calling).
type Store interface {
	// Assign records workerID as the holder of (fieldKey, variantID). Any
	// previous variant held by workerID is released first. Returns false when
	// another worker already holds the variant.
	Assign(fieldKey, variantID, workerID string) bool
	// Release frees whatever variant workerID holds in fieldKey, if any.
	Release(fieldKey, workerID string)
	// InUseBy returns the worker currently holding (fieldKey, variantID), or
	// "" if it is free.
	InUseBy(fieldKey, variantID string) string
	// ListAssigned returns all active allocations for a trade.
	ListAssigned(fieldKey string) []Usage
}

type usageKey struct {
	field   string
	variant string
}

// MemoryStore is the default in-process allocation table. It does not survive
// restarts; durable allocation uses SQLiteStore behind the same interface.
type MemoryStore struct {
	mu       sync.Mutex
	assigned map[usageKey]Usage
	byWorker map[string]usageKey
}

// NewMemoryStore creates an empty in-memory allocation table.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assigned: make(map[usageKey]Usage),
		byWorker: make(map[string]usageKey),
	}
}

func (s *MemoryStore) Assign(fieldKey, variantID, workerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byWorker[workerID]; ok {
		delete(s.assigned, prev)
		delete(s.byWorker, workerID)
	}

	key := usageKey{fieldKey, variantID}
	if _, taken := s.assigned[key]; taken {
		return false
	}
	s.assigned[key] = Usage{
		FieldKey:   fieldKey,
		VariantID:  variantID,
		WorkerID:   workerID,
		AssignedAt: time.Now().UTC(),
		Status:     StatusAssigned,
	}
	s.byWorker[workerID] = key
	return true
}

func (s *MemoryStore) Release(fieldKey, workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byWorker[workerID]
	if !ok || prev.field != fieldKey {
		return
	}
	delete(s.assigned, prev)
	delete(s.byWorker, workerID)
}

func (s *MemoryStore) InUseBy(fieldKey, variantID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.assigned[usageKey{fieldKey, variantID}]
	if !ok {
		return ""
	}
	return u.WorkerID
}

func (s *MemoryStore) ListAssigned(fieldKey string) []Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Usage
	for key, u := range s.assigned {
		if key.field == fieldKey {
			out = append(out, u)
		}
	}
	return out
}
