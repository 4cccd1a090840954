package services

import "sync"

// keyedMutex serialises work per key. Ingestion holds the document ID
// while a document is being (re-)indexed so two ingests of the same
// file never interleave.
type keyedMutex struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{held: make(map[string]struct{})}
}

// TryLock acquires key, or reports false when it is already held.
func (m *keyedMutex) TryLock(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return false
	}
	m.held[key] = struct{}{}
	return true
}

// Unlock releases key. Unlocking a key that is not held is a no-op.
func (m *keyedMutex) Unlock(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
}
