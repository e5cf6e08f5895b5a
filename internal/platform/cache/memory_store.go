package cache

import (
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// memoryStore is the in-process fallback used when Redis is unavailable.
// ttlcache evicts entries on wall-clock time; expires is checked against
// now as well so the window can be driven by an injected clock.
type memoryStore struct {
	items *ttlcache.Cache[string, memoryEntry]
	now   func() time.Time
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		items: ttlcache.New[string, memoryEntry](
			ttlcache.WithDisableTouchOnHit[string, memoryEntry](),
		),
		now: now,
	}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	item := m.items.Get(key)
	if item == nil {
		return nil, false
	}
	e := item.Value()
	if !m.now().Before(e.expires) {
		m.items.Delete(key)
		return nil, false
	}
	return e.value, true
}

func (m *memoryStore) set(key string, value []byte, ttl time.Duration) {
	m.items.DeleteExpired()
	m.items.Set(key, memoryEntry{value: value, expires: m.now().Add(ttl)}, ttl)
}

func (m *memoryStore) del(key string) {
	m.items.Delete(key)
}

func (m *memoryStore) purge(prefix string) {
	for _, k := range m.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.items.Delete(k)
		}
	}
}

func (m *memoryStore) size() int {
	return m.items.Len()
}
