// Package store holds whole-value persistence for the named keys the
// application keeps: one JSON document per key, read and replaced as a unit.
package store

import "errors"

const (
	KeyProfile         = "profile"
	KeyFoodHistory     = "foodHistory"
	KeyChatSessions    = "chatSessions"
	KeyRegisteredUsers = "registeredUsers"
	KeyAuthenticated   = "authenticated"
)

var ErrEmptyKey = errors.New("store key is required")

// Keys lists every key the application persists, in export order.
func Keys() []string {
	return []string{KeyProfile, KeyFoodHistory, KeyChatSessions, KeyRegisteredUsers, KeyAuthenticated}
}

// UpdateFunc receives the current value of a key and returns its
// replacement. Returning write=false leaves the stored value untouched.
// Backends may call it more than once, so it must not have side effects.
type UpdateFunc func(current []byte, ok bool) (next []byte, write bool, err error)

// Store is whole-value persistence. Every method is atomic with respect to
// other callers in the same process, and Set/Update return only after the
// value is durable.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Update performs a read-modify-write of key with no other in-process
	// writer interleaved.
	Update(key string, fn UpdateFunc) error
}

// EntryInfo is bookkeeping a backend may expose about a stored key.
type EntryInfo struct {
	Revision  int64
	UpdatedAt string
	SizeBytes int
}

// Statter is implemented by backends that track per-key bookkeeping.
type Statter interface {
	Stat(key string) (EntryInfo, bool, error)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
