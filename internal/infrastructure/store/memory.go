package store

import (
	"slices"
	"sync"

	"github.com/medcompare/backend/internal/domain"
)

// MemoryStore is a thread-safe, insertion-ordered item store keyed by item key
type MemoryStore struct {
	data  map[string]domain.NormalizedItem
	order []string
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]domain.NormalizedItem),
	}
}

var _ domain.ItemStore = (*MemoryStore)(nil)

// Toggle removes the item when its key is stored and inserts a copy otherwise
func (s *MemoryStore) Toggle(item domain.NormalizedItem) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[item.Key]; exists {
		s.remove(item.Key)
		return false
	}
	s.put(item)
	return true
}

// Put stores a copy of the item. Replacing an existing key keeps its position.
func (s *MemoryStore) Put(item domain.NormalizedItem) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.put(item)
}

// Get retrieves a copy of the item stored under key
func (s *MemoryStore) Get(key string) (domain.NormalizedItem, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[key]
	if !exists {
		return domain.NormalizedItem{}, false
	}
	return item.Clone(), true
}

// Remove deletes the key; unknown keys are ignored
func (s *MemoryStore) Remove(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.remove(key)
}

// Clear removes all items from the store
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]domain.NormalizedItem)
	s.order = nil
}

// IsSelected reports whether key is stored
func (s *MemoryStore) IsSelected(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, exists := s.data[key]
	return exists
}

// Items returns copies of all items in insertion order
func (s *MemoryStore) Items() []domain.NormalizedItem {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	items := make([]domain.NormalizedItem, 0, len(s.order))
	for _, key := range s.order {
		items = append(items, s.data[key].Clone())
	}
	return items
}

// Len returns the current number of items in the store
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// MergeInto copies every item into target, overwriting on key collision.
// Merging a store into itself changes nothing.
func (s *MemoryStore) MergeInto(target domain.ItemStore) {
	if target == nil {
		return
	}
	if other, ok := target.(*MemoryStore); ok && other == s {
		return
	}
	// snapshot first so target may lock freely
	for _, item := range s.Items() {
		target.Put(item)
	}
}

func (s *MemoryStore) put(item domain.NormalizedItem) {
	if _, exists := s.data[item.Key]; !exists {
		s.order = append(s.order, item.Key)
	}
	s.data[item.Key] = item.Clone()
}

func (s *MemoryStore) remove(key string) {
	if _, exists := s.data[key]; !exists {
		return
	}
	delete(s.data, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}
