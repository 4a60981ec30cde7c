package statestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/snaparray/scrubcore/pkg/blockinfo"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New(10)
	s.Set(3, blockinfo.Make(42, false))
	got := s.Get(3)
	if got.Time() != 42 {
		t.Fatalf("Get(3).Time() = %d, want 42", got.Time())
	}
	if s.Get(4).Used() {
		t.Fatalf("untouched block must remain unused")
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scrub-state.json")

	s, err := Load(path, 5)
	if err != nil {
		t.Fatalf("Load (fresh): %v", err)
	}
	s.Set(0, blockinfo.Make(100, false))
	s.Set(2, blockinfo.Make(200, true))
	s.MarkDirty()

	if err := s.Write(context.Background()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.NeedWrite() {
		t.Fatalf("Write must clear the dirty flag")
	}

	loaded, err := Load(path, 5)
	if err != nil {
		t.Fatalf("Load (after write): %v", err)
	}
	if loaded.Get(0).Time() != 100 {
		t.Fatalf("block 0 time = %d, want 100", loaded.Get(0).Time())
	}
	if !loaded.Get(2).Error() {
		t.Fatalf("block 2 must have the error bit set")
	}
	if loaded.Get(1).Used() {
		t.Fatalf("block 1 was never set and must remain unused")
	}
}

func TestMarkDirtyIsMonotonicUntilWrite(t *testing.T) {
	s := New(1)
	if s.NeedWrite() {
		t.Fatalf("fresh store must not need a write")
	}
	s.MarkDirty()
	s.MarkDirty()
	if !s.NeedWrite() {
		t.Fatalf("MarkDirty must set the dirty flag")
	}
	if err := s.Write(context.Background()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.NeedWrite() {
		t.Fatalf("Write must clear the dirty flag")
	}
}
