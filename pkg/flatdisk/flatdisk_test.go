package flatdisk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snaparray/scrubcore/pkg/blockhash"
)

func TestBlockAtAndHash(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data")
	hashPath := filepath.Join(dir, "hashes")

	const blockSize = 4
	data := []byte("AAAABBBBCCCC") // 3 blocks
	if err := os.WriteFile(dataPath, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var want [blockhash.Size]byte
	want[0] = 0x42
	hashes := make([]byte, 3*blockhash.Size)
	copy(hashes[1*blockhash.Size:], want[:])
	if err := os.WriteFile(hashPath, hashes, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := Open("disk0", dataPath, hashPath, blockSize)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if d.Name() != "disk0" {
		t.Errorf("Name() = %q", d.Name())
	}

	b, ok := d.BlockAt(1)
	if !ok {
		t.Fatalf("BlockAt(1) not found")
	}
	if b.Position() != 4 {
		t.Errorf("Position() = %d, want 4", b.Position())
	}
	got, ok := b.Hash()
	if !ok || got != want {
		t.Errorf("Hash() = %v, %v; want %v, true", got, ok, want)
	}

	if _, ok := d.BlockAt(3); ok {
		t.Errorf("BlockAt(3) should be out of range for a 3-block disk")
	}
}

func TestBlockWithNoHashFile(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data")
	if err := os.WriteFile(dataPath, []byte("AAAA"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := Open("disk1", dataPath, "", 4)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	b, ok := d.BlockAt(0)
	if !ok {
		t.Fatalf("BlockAt(0) not found")
	}
	if _, ok := b.Hash(); ok {
		t.Errorf("Hash() should report ok=false with no hash file configured")
	}
}
