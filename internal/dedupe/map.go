// Package dedupe holds the storage used to merge census partitions.
package dedupe

import "runtime/debug"

// MapBackend keeps words in memory.
type MapBackend struct {
	storage map[string]struct{}
}

func NewMapBackend() *MapBackend {
	return &MapBackend{storage: map[string]struct{}{}}
}

func (m *MapBackend) Upsert(word string) error {
	m.storage[word] = struct{}{}
	return nil
}

func (m *MapBackend) IterCallback(callback func(word string)) error {
	for k := range m.storage {
		callback(k)
	}
	return nil
}

// Len is the number of distinct words.
func (m *MapBackend) Len() int { return len(m.storage) }

func (m *MapBackend) Cleanup() {
	m.storage = nil
	// hand the merged census back to the OS at once
	debug.FreeOSMemory()
}
