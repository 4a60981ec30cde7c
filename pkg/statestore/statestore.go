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

// Package statestore is a reference implementation of the scrub core's
// InfoStore (the external, persistent block-info index): an in-memory
// slice of blockinfo.Info values that can be loaded from and
// checkpointed to a single JSON document. The persistent state store is
// explicitly out of scope for the core (spec.md §1); this package exists
// so the core is runnable end to end in tests and in cmd/scrubd.
package statestore

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/snaparray/scrubcore/pkg/blockinfo"
)

// Store is an in-memory InfoStore, optionally backed by a JSON snapshot
// file on disk.
type Store struct {
	path      string
	info      []blockinfo.Info
	needWrite bool
}

// New creates a Store sized for blockmax blocks, all initially unused.
func New(blockmax int64) *Store {
	return &Store{info: make([]blockinfo.Info, blockmax)}
}

// Load reads a JSON snapshot previously written by Write. The document
// shape is {"blocks":{"<index>":<uint32>, ...}}; indices absent from the
// document are left unused (zero).
func Load(path string, blockmax int64) (*Store, error) {
	s := New(blockmax)
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("statestore: read %s: %w", path, err)
	}

	result := gjson.GetBytes(data, "blocks")
	if !result.Exists() {
		return s, nil
	}
	var rangeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		idx, err := strconv.ParseInt(key.String(), 10, 64)
		if err != nil || idx < 0 || idx >= blockmax {
			rangeErr = fmt.Errorf("statestore: block index %q out of range", key.String())
			return false
		}
		s.info[idx] = blockinfo.Info(value.Uint())
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return s, nil
}

// BlockMax implements scrub.InfoStore.
func (s *Store) BlockMax() int64 {
	return int64(len(s.info))
}

// Get implements scrub.InfoStore.
func (s *Store) Get(i int64) blockinfo.Info {
	return s.info[i]
}

// Set implements scrub.InfoStore.
func (s *Store) Set(i int64, info blockinfo.Info) {
	s.info[i] = info
}

// MarkDirty implements scrub.InfoStore. It is monotonic: once set, only
// a successful Write clears it.
func (s *Store) MarkDirty() {
	s.needWrite = true
}

// NeedWrite implements scrub.InfoStore.
func (s *Store) NeedWrite() bool {
	return s.needWrite
}

// Write implements scrub.InfoStore: a full checkpoint of every used
// block's info into the JSON snapshot at s.path. If s.path is empty,
// Write is a no-op that still clears the dirty flag, for tests that only
// exercise the in-memory store.
func (s *Store) Write(ctx context.Context) error {
	if s.path == "" {
		s.needWrite = false
		return nil
	}

	doc := []byte(`{"blocks":{}}`)
	var err error
	for i, info := range s.info {
		if !info.Used() {
			continue
		}
		doc, err = sjson.SetBytes(doc, "blocks."+strconv.Itoa(i), uint32(info))
		if err != nil {
			return fmt.Errorf("statestore: encode block %d: %w", i, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o600); err != nil {
		return fmt.Errorf("statestore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("statestore: rename %s to %s: %w", tmp, s.path, err)
	}
	s.needWrite = false
	return nil
}
