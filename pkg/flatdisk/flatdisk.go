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

// Package flatdisk is a minimal reference implementation of scrub.Disk:
// one data-disk slot backed by a single flat file of blockSize-aligned
// records, with an optional sidecar file of fixed-width fingerprints
// (one blockhash.Size record per index). Mapping a disk's real
// filesystem tree (many files, each split across many blocks) into this
// shape is the job of the snapshot/content layer, which is out of
// scope for the scrub core (spec.md §1); this package exists so
// cmd/scrubd has something real to scrub without that layer.
package flatdisk

import (
	"fmt"
	"os"

	"github.com/snaparray/scrubcore/pkg/blockhash"
	"github.com/snaparray/scrubcore/pkg/scrub"
)

// Disk is a flat-file-backed scrub.Disk.
type Disk struct {
	name      string
	data      *os.File
	hashes    *os.File // nil if this disk carries no fingerprints
	blockSize int
	blockMax  int64
}

// Open opens dataPath (required) and hashPath (optional, pass "" to
// disable hash verification for this disk) and sizes the disk from
// dataPath's length.
func Open(name, dataPath, hashPath string, blockSize int) (*Disk, error) {
	data, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("flatdisk: open %s: %w", dataPath, err)
	}
	fi, err := data.Stat()
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("flatdisk: stat %s: %w", dataPath, err)
	}

	d := &Disk{
		name:      name,
		data:      data,
		blockSize: blockSize,
		blockMax:  fi.Size() / int64(blockSize),
	}

	if hashPath != "" {
		hashes, err := os.Open(hashPath)
		if err != nil {
			data.Close()
			return nil, fmt.Errorf("flatdisk: open %s: %w", hashPath, err)
		}
		d.hashes = hashes
	}

	return d, nil
}

// Close closes the underlying file(s).
func (d *Disk) Close() error {
	err := d.data.Close()
	if d.hashes != nil {
		if herr := d.hashes.Close(); herr != nil && err == nil {
			err = herr
		}
	}
	return err
}

// Name implements scrub.Disk.
func (d *Disk) Name() string { return d.name }

// BlockAt implements scrub.Disk.
func (d *Disk) BlockAt(i int64) (scrub.Block, bool) {
	if i < 0 || i >= d.blockMax {
		return nil, false
	}
	return block{disk: d, index: i}, true
}

type block struct {
	disk  *Disk
	index int64
}

func (b block) File() string    { return b.disk.data.Name() }
func (b block) Position() int64 { return b.index * int64(b.disk.blockSize) }

func (b block) Hash() ([blockhash.Size]byte, bool) {
	var sum [blockhash.Size]byte
	if b.disk.hashes == nil {
		return sum, false
	}
	n, err := b.disk.hashes.ReadAt(sum[:], b.index*blockhash.Size)
	if err != nil || n != blockhash.Size {
		return sum, false
	}
	return sum, true
}
