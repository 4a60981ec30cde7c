/*
 * Minio Cloud Storage, (C) 2016, 2017, 2018 Minio, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scrub is the background verifier described by this
// repository's specification: it samples the oldest-unverified blocks
// of a RAID-like array, re-reads them from every data disk, recomputes
// parity, and classifies what it finds without attempting repair.
package scrub

import (
	"context"
	"time"

	"github.com/snaparray/scrubcore/pkg/blockhash"
	"github.com/snaparray/scrubcore/pkg/blockinfo"
)

// InfoStore is the narrow view onto the external, persistent block-info
// index (C1) that the scrub core reads and mutates during a run. It is
// owned by the enclosing state store; the core never constructs one.
type InfoStore interface {
	// BlockMax returns the fixed block count for the array for the
	// duration of this run.
	BlockMax() int64
	Get(i int64) blockinfo.Info
	Set(i int64, info blockinfo.Info)
	// MarkDirty sets the monotonic "needs write" flag. It is never
	// cleared by the core.
	MarkDirty()
	NeedWrite() bool
	// Write performs a full checkpoint. Only ever called by the
	// autosave controller, or by a caller after Run returns.
	Write(ctx context.Context) error
}

// Block is a descriptor for one (disk, index) position, as produced by
// the external disk module.
type Block interface {
	File() string
	Position() int64
	// Hash returns the block's stored fingerprint, if any. ok is false
	// for a block written before hashing was enabled, or for formats
	// that don't carry one; such blocks are read and still contribute
	// to parity but are not individually verified.
	Hash() (sum [blockhash.Size]byte, ok bool)
}

// Disk is one data-disk slot's view of the array.
type Disk interface {
	Name() string
	// BlockAt returns the block at index i on this disk, or
	// ok=false if the slot is vacant or has no file at i (in either
	// case the scrub loop zero-fills the slot's buffer).
	BlockAt(i int64) (block Block, ok bool)
}

// SlotOutcome reports what happened reading one disk slot at one block
// index: OpenErr/ReadErr nil means the slot was read successfully (or
// was vacant and zero-filled). LastAccess is a best-effort diagnostic,
// zero if unavailable.
type SlotOutcome struct {
	N          int
	OpenErr    error
	ReadErr    error
	Path       string
	DiskName   string
	LastAccess time.Time
}

// HandlePool is the disk handle pool (C2): one handle per data disk,
// opened lazily as the scan crosses file boundaries, read concurrently
// across slots for a given block index.
type HandlePool interface {
	// DiskMax returns the number of disk slots the pool manages.
	DiskMax() int
	// ReadStripe reads block index i across every slot, zero-filling
	// vacant slots or slots with no file at i, and returns one
	// SlotOutcome per slot. The returned error is non-nil only for a
	// fatal close failure (spec.md §4.2/§7), which aborts the run.
	ReadStripe(ctx context.Context, i int64, buffers [][]byte) ([]SlotOutcome, error)
	// CloseAll closes every open handle and returns the (possibly
	// empty) set of close errors encountered; it never stops at the
	// first failure so every handle gets a chance to close.
	CloseAll() []error
}

// ParityFile is the external parity-file collaborator (parity_read).
type ParityFile interface {
	ReadAt(ctx context.Context, i int64, buf []byte) error
}

// ProgressReporter mirrors state_progress_{begin,end,stop,restart} and
// state_progress itself.
type ProgressReporter interface {
	Begin(blockstart, blockmax, countmax int64)
	// Report advances progress by one block and returns true if the
	// caller has requested a cooperative stop.
	Report(i int64, done, countmax int64, bytes int64) (stop bool)
	Pause()
	Resume()
	End(done, countmax int64, bytes int64)
}

// MetricsSink receives per-block classification events; it is optional
// (a nil sink disables metrics) so tests can run without wiring one.
type MetricsSink interface {
	ObserveBlock(state BlockState)
	ObserveBytesRead(n int64)
}

// Logger is the process-level failure reporting sink (§6): each
// distinct error is one call, one line.
type Logger interface {
	BlockError(index int64, source, path, kind string)
	Fatalf(format string, args ...interface{})
}

// Clock abstracts "now" so tests can drive planning deterministically.
type Clock func() time.Time
