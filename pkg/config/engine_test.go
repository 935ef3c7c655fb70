package config

import "testing"

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.K != 1000 || cfg.Workers != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

type stubStore struct {
	values map[string]interface{}
}

func (s *stubStore) Load() error { return nil }
func (s *stubStore) Save() error { return nil }
func (s *stubStore) Reset() error { return nil }
func (s *stubStore) Get(key string) (interface{}, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}
func (s *stubStore) Set(key string, value interface{}) error {
	s.values[key] = value
	return nil
}
func (s *stubStore) Delete(key string) error { delete(s.values, key); return nil }
func (s *stubStore) GetAll() (map[string]interface{}, error) { return s.values, nil }
func (s *stubStore) SetAll(values map[string]interface{}) error {
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func TestFromStoreOverridesDefaults(t *testing.T) {
	store := &stubStore{values: map[string]interface{}{
		"dt":      2.5,
		"workers": 4,
		"seed":    7,
	}}
	cfg, err := FromStore(store)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if cfg.Dt != 2.5 || cfg.Workers != 4 || cfg.Seed != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.K != 1000 {
		t.Fatalf("expected K default to survive, got %d", cfg.K)
	}
}

func TestFromStoreNilStoreReturnsDefaults(t *testing.T) {
	cfg, err := FromStore(nil)
	if err != nil {
		t.Fatalf("FromStore(nil): %v", err)
	}
	if cfg != DefaultEngineConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
