package repository

import "time"

// minSweepSize is the entry count below which expired entries are only dropped on access.
const minSweepSize = 1024

type expiringEntry[V any] struct {
	value   V
	expires time.Time
}

// expiringMap backs the in-process session stores. Expired entries are dropped when read,
// and the whole map is swept whenever it doubles past the live size seen at the last
// sweep, so memory tracks live sessions. Callers serialise access.
type expiringMap[V any] struct {
	entries   map[string]expiringEntry[V]
	now       func() time.Time
	sweepSize int
}

func newExpiringMap[V any]() *expiringMap[V] {
	return &expiringMap[V]{entries: map[string]expiringEntry[V]{}, now: time.Now, sweepSize: minSweepSize}
}

func (m *expiringMap[V]) live(e expiringEntry[V], now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

func (m *expiringMap[V]) get(key string) (V, bool) {
	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !m.live(e, m.now()) {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// set stores value for ttl; a non-positive ttl never expires.
func (m *expiringMap[V]) set(key string, value V, ttl time.Duration) {
	now := m.now()
	e := expiringEntry[V]{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.entries[key] = e
	if len(m.entries) >= m.sweepSize {
		m.sweep(now)
	}
}

func (m *expiringMap[V]) delete(key string) {
	delete(m.entries, key)
}

func (m *expiringMap[V]) sweep(now time.Time) {
	for key, e := range m.entries {
		if !m.live(e, now) {
			delete(m.entries, key)
		}
	}
	m.sweepSize = 2 * len(m.entries)
	if m.sweepSize < minSweepSize {
		m.sweepSize = minSweepSize
	}
}

func (m *expiringMap[V]) len() int { return len(m.entries) }
