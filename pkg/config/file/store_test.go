package file

import (
	"path/filepath"
	"testing"
)

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.yaml"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load on missing file should not error: %v", err)
	}
	all, err := s.GetAll()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty store, got %v (err=%v)", all, err)
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	s := NewStore(path)
	s.Set("dt", 1.0)
	s.Set("workers", 4)
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, err := reloaded.Get("workers")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if iv, ok := v.(int); !ok || iv != 4 {
		t.Fatalf("expected workers=4, got %v (%T)", v, v)
	}
}

func TestStoreDeleteAndReset(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "x.yaml"))
	s.Set("seed", 42)
	s.Delete("seed")
	if _, err := s.Get("seed"); err == nil {
		t.Fatal("expected error after delete")
	}

	s.Set("k", 500)
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	all, _ := s.GetAll()
	if len(all) != 0 {
		t.Fatalf("expected empty store after reset, got %v", all)
	}
}
