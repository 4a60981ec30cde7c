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

// Package parity is a minimal reference implementation of the external
// parity file collaborator (parity_open/parity_read/parity_close). The
// bit-exact on-disk layout of parity is out of scope for the scrub core
// (spec.md §1); this package exists so pkg/scrub's tests and cmd/scrubd
// have something real to read from: a flat file of blockSize-aligned
// records, one per block index.
package parity

import (
	"context"
	"fmt"
	"os"
)

// File is a local-file-backed ParityFile.
type File struct {
	f         *os.File
	blockSize int
}

// Open opens path for reading. hint is the same opaque sequential-read
// hint the disk handle pool receives; this reference implementation
// ignores it.
func Open(ctx context.Context, path string, blockSize int, hint bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parity: open %s: %w", path, err)
	}
	return &File{f: f, blockSize: blockSize}, nil
}

// ReadAt implements scrub.ParityFile: it reads the blockSize-aligned
// record for block index i.
func (p *File) ReadAt(ctx context.Context, i int64, buf []byte) error {
	if len(buf) != p.blockSize {
		return fmt.Errorf("parity: buffer length %d does not match block size %d", len(buf), p.blockSize)
	}
	n, err := p.f.ReadAt(buf, i*int64(p.blockSize))
	if err != nil {
		return fmt.Errorf("parity: read at block %d: %w", i, err)
	}
	if n != p.blockSize {
		return fmt.Errorf("parity: short read at block %d: got %d bytes, want %d", i, n, p.blockSize)
	}
	return nil
}

// Close closes the underlying file.
func (p *File) Close() error {
	if err := p.f.Close(); err != nil {
		return fmt.Errorf("parity: close: %w", err)
	}
	return nil
}

// Size returns the number of whole blockSize records in path, i.e.
// parity_size(state): the blockmax for the array.
func Size(path string, blockSize int) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("parity: stat %s: %w", path, err)
	}
	return fi.Size() / int64(blockSize), nil
}
