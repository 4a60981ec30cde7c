package parity

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestReadAtAndSize(t *testing.T) {
	const blockSize = 8
	dir := t.TempDir()
	path := filepath.Join(dir, "parity.bin")
	content := bytes.Repeat([]byte{0}, blockSize)
	content = append(content, bytes.Repeat([]byte{1}, blockSize)...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	n, err := Size(path, blockSize)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != 2 {
		t.Fatalf("Size = %d, want 2", n)
	}

	f, err := Open(context.Background(), path, blockSize, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	buf := make([]byte, blockSize)
	if err := f.ReadAt(context.Background(), 1, buf); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{1}, blockSize)) {
		t.Fatalf("ReadAt(1) = %v, want all-ones", buf)
	}
}

func TestReadAtPastEndOfFile(t *testing.T) {
	const blockSize = 8
	dir := t.TempDir()
	path := filepath.Join(dir, "parity.bin")
	if err := os.WriteFile(path, make([]byte, blockSize), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := Open(context.Background(), path, blockSize, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	buf := make([]byte, blockSize)
	if err := f.ReadAt(context.Background(), 5, buf); err == nil {
		t.Fatalf("ReadAt past end of file must fail")
	}
}
