package engine

// evalEntry stores a cached static evaluation.
type evalEntry struct {
	Key   uint64
	Score float64
}

// EvalCache is a hash table for caching static evaluations. It belongs to a
// single searcher and must be cleared whenever that searcher's weights change.
type EvalCache struct {
	entries []evalEntry
	mask    uint64
}

// NewEvalCache creates a new evaluation cache with the given size in MB.
func NewEvalCache(sizeMB int) *EvalCache {
	// Each entry is 16 bytes, round to power of 2
	entrySize := 16
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &EvalCache{
		entries: make([]evalEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a static evaluation.
func (ec *EvalCache) Probe(key uint64) (float64, bool) {
	entry := &ec.entries[key&ec.mask]
	if entry.Key == key && key != 0 {
		return entry.Score, true
	}
	return 0, false
}

// Store saves a static evaluation.
func (ec *EvalCache) Store(key uint64, score float64) {
	entry := &ec.entries[key&ec.mask]
	entry.Key = key
	entry.Score = score
}

// Clear clears the cache.
func (ec *EvalCache) Clear() {
	for i := range ec.entries {
		ec.entries[i] = evalEntry{}
	}
}
