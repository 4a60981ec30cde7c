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

// Package diskpool implements the scrub core's disk handle pool (C2):
// one file handle per data-disk slot, opened lazily as the scan crosses
// file boundaries and read concurrently across slots for a given block
// index.
package diskpool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/djherbis/atime"
	"github.com/gammazero/workerpool"

	"github.com/snaparray/scrubcore/pkg/scrub"
)

// ErrCloseFailed is the fatal error the pool returns when closing a
// handle mid-scan fails. Per the spec this is unexpected and aborts the
// run; it is distinct from an open or read failure, both of which are
// merely recorded per block.
var ErrCloseFailed = errors.New("diskpool: unexpected close failure on a data disk")

// errOpenFailed marks a failed os.Open on a data disk so ReadStripe can
// route it to SlotOutcome.OpenErr instead of ReadErr, per spec.md §4.2's
// distinct "Open error"/"Read error" wire-format kinds.
var errOpenFailed = errors.New("diskpool: open failed")

type slotHandle struct {
	file        *os.File
	currentPath string
}

// Pool is a HandlePool over a fixed set of disk slots, some of which may
// be vacant (nil Disk).
type Pool struct {
	disks          []scrub.Disk
	handles        []slotHandle
	sequentialHint bool
	wp             *workerpool.WorkerPool
}

// NewPool builds a pool over disks (any entry may be nil for a vacant
// slot) with a bounded worker pool sized to len(disks), reused for the
// whole scrub run. sequentialHint is recorded as an opaque read-ahead
// hint; the pool opens files with a plain os.Open and does not pass the
// hint on to the OS.
func NewPool(disks []scrub.Disk, sequentialHint bool) *Pool {
	return &Pool{
		disks:          disks,
		handles:        make([]slotHandle, len(disks)),
		sequentialHint: sequentialHint,
		wp:             workerpool.New(len(disks)),
	}
}

// DiskMax implements scrub.HandlePool.
func (p *Pool) DiskMax() int {
	return len(p.disks)
}

// readOne serves one slot. Each slot's handle is only ever touched by
// the single goroutine processing that slot for the current block
// index, so it needs no locking even though ReadStripe runs slots
// concurrently.
func (p *Pool) readOne(j int, block scrub.Block, buf []byte) (int, error) {
	h := &p.handles[j]

	if h.currentPath != block.File() {
		if h.file != nil {
			if err := h.file.Close(); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrCloseFailed, err)
			}
			h.file = nil
			h.currentPath = ""
		}
	}

	if h.file == nil {
		f, err := os.Open(block.File())
		if err != nil {
			if at, aerr := atime.Stat(block.File()); aerr == nil {
				return 0, fmt.Errorf("%w: last access %s: %v", errOpenFailed, at.Format(time.RFC3339), err)
			}
			return 0, fmt.Errorf("%w: %v", errOpenFailed, err)
		}
		h.file = f
		h.currentPath = block.File()
	}

	n, err := h.file.ReadAt(buf, block.Position())
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	return n, nil
}

// ReadStripe reads block index i across every slot concurrently,
// zero-filling vacant slots or slots with no file at i. It returns one
// SlotOutcome per slot (OpenErr/ReadErr nil means success) and a fatal
// error if any slot's file-boundary close failed, per spec.md §4.2 and
// §7 ("Unexpected errors"): that case aborts the run.
func (p *Pool) ReadStripe(ctx context.Context, i int64, buffers [][]byte) ([]scrub.SlotOutcome, error) {
	outcomes := make([]scrub.SlotOutcome, len(p.disks))
	var wg sync.WaitGroup
	var fatalMu sync.Mutex
	var fatal error

	for j := range p.disks {
		j := j
		disk := p.disks[j]
		buf := buffers[j]

		if disk == nil {
			for k := range buf {
				buf[k] = 0
			}
			continue
		}
		block, ok := disk.BlockAt(i)
		if !ok {
			for k := range buf {
				buf[k] = 0
			}
			continue
		}

		wg.Add(1)
		p.wp.Submit(func() {
			defer wg.Done()

			n, err := p.readOne(j, block, buf)

			out := scrub.SlotOutcome{
				N:        n,
				Path:     block.File(),
				DiskName: disk.Name(),
			}
			if errors.Is(err, ErrCloseFailed) {
				fatalMu.Lock()
				if fatal == nil {
					fatal = err
				}
				fatalMu.Unlock()
				out.ReadErr = err
			} else if errors.Is(err, errOpenFailed) {
				out.OpenErr = err
			} else if err != nil {
				out.ReadErr = err
			} else if n != len(buf) {
				out.ReadErr = fmt.Errorf("short read: got %d bytes, want %d", n, len(buf))
			}
			outcomes[j] = out
		})
	}
	wg.Wait()

	return outcomes, fatal
}

// CloseAll implements scrub.HandlePool: every handle is closed on every
// exit path, and a failure closing one handle does not stop the others
// from being attempted.
func (p *Pool) CloseAll() []error {
	p.wp.StopWait()

	var errs []error
	for j := range p.handles {
		h := &p.handles[j]
		if h.file == nil {
			continue
		}
		if err := h.file.Close(); err != nil {
			errs = append(errs, err)
		}
		h.file = nil
		h.currentPath = ""
	}
	return errs
}
