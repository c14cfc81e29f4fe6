package imagecache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/MKhiriev/tally-sync/models"
)

// memoryTier is an LRU bounded by both entry count and cumulative cost.
type memoryTier struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, models.ImageBlob]
	cost    int
	maxCost int

	// dropping is set while remove or purge runs, so their callbacks are
	// not reported as capacity evictions
	dropping bool

	onEvict func(key string, capacity bool)
}

func newMemoryTier(maxEntries, maxCost int, onEvict func(key string, capacity bool)) (*memoryTier, error) {
	m := &memoryTier{maxCost: maxCost, onEvict: onEvict}

	lru, err := simplelru.NewLRU[string, models.ImageBlob](maxEntries, m.evicted)
	if err != nil {
		return nil, err
	}
	m.lru = lru

	return m, nil
}

// evicted is the simplelru callback. It runs under m.mu.
func (m *memoryTier) evicted(key string, blob models.ImageBlob) {
	m.cost -= blob.Cost
	if m.onEvict != nil {
		m.onEvict(key, !m.dropping)
	}
}

func (m *memoryTier) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	return blob.Bytes, true
}

func (m *memoryTier) contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lru.Contains(key)
}

// add admits blob and evicts least recently used entries until both limits
// hold. A blob costing more than the whole budget is not admitted.
func (m *memoryTier) add(blob models.ImageBlob) bool {
	if blob.Cost > m.maxCost {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.lru.Peek(blob.Key); ok {
		// replacing a value does not fire the evict callback
		m.cost -= old.Cost
	}

	// the entry-count bound is enforced by simplelru itself
	m.lru.Add(blob.Key, blob)
	m.cost += blob.Cost

	for m.cost > m.maxCost {
		if _, _, ok := m.lru.RemoveOldest(); !ok {
			break
		}
	}

	return true
}

func (m *memoryTier) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropping = true
	m.lru.Remove(key)
	m.dropping = false
}

func (m *memoryTier) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropping = true
	m.lru.Purge()
	m.dropping = false
	m.cost = 0
}

func (m *memoryTier) residency() (entries, cost int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lru.Len(), m.cost
}

func (m *memoryTier) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lru.Keys()
}
