package service

import "sync"

// keyedMutex serializes transitions per order id so concurrent confirmations
// and webhooks for the same order cannot race, without serializing unrelated
// orders behind a single lock. Orders are retained forever, so entries are
// not reclaimed.
type keyedMutex struct {
	locks sync.Map
}

func (m *keyedMutex) lock(key string) func() {
	v, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
