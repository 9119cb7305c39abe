package storage

// MemoryStorage keeps slots in a map. It backs tests and ephemeral sessions
// that should not touch disk.
type MemoryStorage struct {
	quota int64
	items map[string][]byte
}

// NewMemoryStorage creates an in-memory storage. A quota of 0 means unlimited.
func NewMemoryStorage(quota int64) *MemoryStorage {
	return &MemoryStorage{quota: quota, items: make(map[string][]byte)}
}

// SetQuota changes the quota for subsequent writes.
func (s *MemoryStorage) SetQuota(quota int64) {
	s.quota = quota
}

// GetItem returns a copy of the stored value so callers cannot alias the slot.
func (s *MemoryStorage) GetItem(key string) ([]byte, bool, error) {
	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// SetItem stores a copy of the value.
func (s *MemoryStorage) SetItem(key string, value []byte) error {
	if s.quota > 0 && int64(len(value)) > s.quota {
		return ErrQuotaExceeded
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

// RemoveItem clears a slot.
func (s *MemoryStorage) RemoveItem(key string) error {
	delete(s.items, key)
	return nil
}
