package diskpool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/snaparray/scrubcore/pkg/blockhash"
	"github.com/snaparray/scrubcore/pkg/scrub"
)

type fakeBlock struct {
	file string
	pos  int64
}

func (b fakeBlock) File() string     { return b.file }
func (b fakeBlock) Position() int64  { return b.pos }
func (b fakeBlock) Hash() ([blockhash.Size]byte, bool) {
	return [blockhash.Size]byte{}, false
}

type fakeDisk struct {
	name   string
	blocks map[int64]fakeBlock
}

func (d *fakeDisk) Name() string { return d.name }
func (d *fakeDisk) BlockAt(i int64) (scrub.Block, bool) {
	b, ok := d.blocks[i]
	return b, ok
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadStripeVacantSlotZeroFilled(t *testing.T) {
	pool := NewPool([]scrub.Disk{nil}, false)
	buf := []byte{1, 2, 3}
	buffers := [][]byte{buf}
	outcomes, err := pool.ReadStripe(context.Background(), 0, buffers)
	if err != nil {
		t.Fatalf("ReadStripe: %v", err)
	}
	if outcomes[0].OpenErr != nil || outcomes[0].ReadErr != nil {
		t.Fatalf("vacant slot must not report an error: %+v", outcomes[0])
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("vacant slot buffer must be zero-filled, got %v", buf)
		}
	}
}

func TestReadStripeReadsAllSlots(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.dat", []byte("AAAA"))
	pathB := writeFile(t, dir, "b.dat", []byte("BBBB"))

	diskA := &fakeDisk{name: "disk0", blocks: map[int64]fakeBlock{0: {file: pathA, pos: 0}}}
	diskB := &fakeDisk{name: "disk1", blocks: map[int64]fakeBlock{0: {file: pathB, pos: 0}}}

	pool := NewPool([]scrub.Disk{diskA, diskB}, false)
	buffers := [][]byte{make([]byte, 4), make([]byte, 4)}

	outcomes, err := pool.ReadStripe(context.Background(), 0, buffers)
	if err != nil {
		t.Fatalf("ReadStripe: %v", err)
	}
	for j, out := range outcomes {
		if out.OpenErr != nil || out.ReadErr != nil {
			t.Fatalf("slot %d: unexpected error: %+v", j, out)
		}
	}
	if string(buffers[0]) != "AAAA" || string(buffers[1]) != "BBBB" {
		t.Fatalf("unexpected buffer contents: %q %q", buffers[0], buffers[1])
	}

	if errs := pool.CloseAll(); len(errs) != 0 {
		t.Fatalf("CloseAll: unexpected errors %v", errs)
	}
}

func TestReadStripeOpenErrorIsPerSlot(t *testing.T) {
	diskA := &fakeDisk{name: "disk0", blocks: map[int64]fakeBlock{0: {file: "/nonexistent/path/for/test", pos: 0}}}
	pool := NewPool([]scrub.Disk{diskA}, false)
	buffers := [][]byte{make([]byte, 4)}

	outcomes, err := pool.ReadStripe(context.Background(), 0, buffers)
	if err != nil {
		t.Fatalf("ReadStripe must not be fatal for a plain open error: %v", err)
	}
	if outcomes[0].OpenErr == nil {
		t.Fatalf("expected an open error for a nonexistent file")
	}
}

func TestFileBoundaryReopensOnChange(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.dat", []byte("firstfile"))
	pathB := writeFile(t, dir, "b.dat", []byte("secondfle"))

	disk := &fakeDisk{name: "disk0", blocks: map[int64]fakeBlock{
		0: {file: pathA, pos: 0},
		1: {file: pathB, pos: 0},
	}}
	pool := NewPool([]scrub.Disk{disk}, false)

	buf0 := [][]byte{make([]byte, 9)}
	if _, err := pool.ReadStripe(context.Background(), 0, buf0); err != nil {
		t.Fatalf("ReadStripe(0): %v", err)
	}
	if string(buf0[0]) != "firstfile" {
		t.Fatalf("index 0: got %q", buf0[0])
	}

	buf1 := [][]byte{make([]byte, 9)}
	if _, err := pool.ReadStripe(context.Background(), 1, buf1); err != nil {
		t.Fatalf("ReadStripe(1): %v", err)
	}
	if string(buf1[0]) != "secondfle" {
		t.Fatalf("index 1: got %q", buf1[0])
	}

	if errs := pool.CloseAll(); len(errs) != 0 {
		t.Fatalf("CloseAll: %v", errs)
	}
}
