package storage

import "errors"

// ErrQuotaExceeded is returned by SetItem when writing the value would push
// the slot past the configured storage quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Storage is a durable local key-value medium with named slots. The database
// persists its entire state into a single slot.
type Storage interface {
	// GetItem reads a slot. The second return value is false when the slot
	// has never been written.
	GetItem(key string) ([]byte, bool, error)
	// SetItem writes a slot, returning ErrQuotaExceeded when the value does
	// not fit the quota.
	SetItem(key string, value []byte) error
	// RemoveItem clears a slot. Removing an absent slot is not an error.
	RemoveItem(key string) error
}
