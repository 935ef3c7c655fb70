// Package memory implements config.Store entirely in memory, the way
// the teacher's pkg/config/memory package does — useful for tests and
// for a default GlobalClock that has no scenario file.
package memory

import (
	"sync"

	"github.com/butter-bot-machines/desim/pkg/config"
)

// Store is an in-memory config.Store.
type Store struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// New creates an empty in-memory store, optionally seeded with initial.
func New(initial map[string]interface{}) *Store {
	data := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &Store{data: data}
}

func (s *Store) Load() error  { return nil }
func (s *Store) Save() error  { return nil }
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]interface{})
	return nil
}

func (s *Store) Get(key string) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, config.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) GetAll() (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SetAll(values map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.data[k] = v
	}
	return nil
}
