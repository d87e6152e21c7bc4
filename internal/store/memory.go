package store

import "sync"

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. It backs tests and the
// "memory" backend for throwaway sessions.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	revs   map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}, revs: map[string]int64{}}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return cloneBytes(v), ok, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.revs, key)
	return nil
}

func (s *MemoryStore) Update(key string, fn UpdateFunc) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[key]
	next, write, err := fn(cloneBytes(cur), ok)
	if err != nil {
		return err
	}
	if write {
		s.put(key, next)
	}
	return nil
}

func (s *MemoryStore) Stat(key string) (EntryInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return EntryInfo{}, false, nil
	}
	return EntryInfo{Revision: s.revs[key], SizeBytes: len(v)}, true, nil
}

func (s *MemoryStore) put(key string, value []byte) {
	s.values[key] = cloneBytes(value)
	s.revs[key]++
}
