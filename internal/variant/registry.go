package variant

import (
	"crypto/sha1"
	"math/big"
)

// Registry combines the variant catalog with an allocation store.
type Registry struct {
	catalog *Catalog
	store   Store
}

// NewRegistry builds a registry over the given catalog and store. A nil
// catalog uses the built-in bank; a nil store uses a fresh MemoryStore.
func NewRegistry(catalog *Catalog, store Store) *Registry {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{catalog: catalog, store: store}
}

// ListedVariant is a catalog entry annotated with its current holder.
type ListedVariant struct {
	Variant
	InUseBy string `json:"in_use_by,omitempty"`
}

// List returns the variants available for a trade with their current holders.
func (r *Registry) List(field string) []ListedVariant {
	fk, variants := r.catalog.ForField(field)
	out := make([]ListedVariant, 0, len(variants))
	for _, v := range variants {
		out = append(out, ListedVariant{
			Variant: v,
			InUseBy: r.store.InUseBy(fk, v.ID),
		})
	}
	return out
}

// Count returns the number of variants available for a trade.
func (r *Registry) Count(field string) int {
	return r.catalog.Count(field)
}

// Pick is the result of PickNext.
type Pick struct {
	Variant      Variant `json:"variant"`
	Exhausted    bool    `json:"exhausted"`
	SkippedCount int     `json:"skipped_count"`
	InUseBy      string  `json:"in_use_by,omitempty"`
}

// PickNext deterministically selects a variant for (seed, cursor). The walk
// starts at (int(SHA1(seed)) + cursor) mod N and advances circularly past
// in-use variants when skipInUse is set. A full circle with nothing free
// returns the starting variant with Exhausted set; callers tolerate the
// collision rather than fail.
func (r *Registry) PickNext(field, seed string, cursor int, skipInUse bool) Pick {
	fk, variants := r.catalog.ForField(field)
	n := len(variants)
	if n == 0 {
		// The generic pool must never be empty; guard anyway.
		return Pick{Exhausted: true}
	}

	start := seedIndex(seed, cursor, n)
	idx := start
	skipped := 0
	for tried := 0; tried < n; tried++ {
		v := variants[idx]
		usedBy := r.store.InUseBy(fk, v.ID)
		if !(skipInUse && usedBy != "") {
			return Pick{Variant: v, SkippedCount: skipped, InUseBy: usedBy}
		}
		skipped++
		idx = (idx + 1) % n
	}

	v := variants[start]
	return Pick{
		Variant:      v,
		Exhausted:    true,
		SkippedCount: skipped,
		InUseBy:      r.store.InUseBy(fk, v.ID),
	}
}

// AssignResult reports an assignment attempt.
type AssignResult struct {
	OK      bool   `json:"ok"`
	InUseBy string `json:"in_use_by,omitempty"`
}

// Assign permanently allocates a variant to a worker. A lost race returns
// OK=false with the current holder; callers retry with the next pick.
func (r *Registry) Assign(field, variantID, workerID string) AssignResult {
	fk := CanonField(field)
	if r.store.Assign(fk, variantID, workerID) {
		return AssignResult{OK: true}
	}
	return AssignResult{OK: false, InUseBy: r.store.InUseBy(fk, variantID)}
}

// Release frees whatever variant the worker holds in the trade.
func (r *Registry) Release(field, workerID string) {
	r.store.Release(CanonField(field), workerID)
}

// seedIndex hashes the seed to a deterministic starting index. SHA-1 is used
// for distribution, not security; determinism is the contract.
func seedIndex(seed string, cursor, n int) int {
	sum := sha1.Sum([]byte(seed))
	v := new(big.Int).SetBytes(sum[:])
	v.Add(v, big.NewInt(int64(cursor)))
	// big.Int.Mod is Euclidean: the result is non-negative even if a negative
	// cursor outweighs the hash.
	v.Mod(v, big.NewInt(int64(n)))
	return int(v.Int64())
}
