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

// Package raidcode wraps klauspost/reedsolomon to provide the scrub
// core's RAID code generator: given the data blocks of one stripe, it
// writes the recomputed parity syndromes into the caller's buffers.
package raidcode

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Level is the parity level of an array: 1 for single parity (P only),
// 2 for dual parity (P and Q).
type Level int

const (
	// LevelSingle generates only the P syndrome.
	LevelSingle Level = 1
	// LevelDual generates both the P and Q syndromes.
	LevelDual Level = 2
)

func (l Level) parityShards() int {
	return int(l)
}

// Gen recomputes parity over buffers[0:diskmax] (the data shards),
// writing the P syndrome into buffers[diskmax] and, if level is
// LevelDual, the Q syndrome into buffers[diskmax+1]. Every data buffer
// must already be exactly blockSize bytes long, including vacant/unused
// slots which callers must have zero-filled: the generator does not
// special-case short stripes, so zero inputs must yield the
// mathematically correct parity. A parity buffer of any other length is
// replaced in buffers with a freshly allocated blockSize buffer.
func Gen(level Level, buffers [][]byte, diskmax, blockSize int) error {
	if level != LevelSingle && level != LevelDual {
		return fmt.Errorf("raidcode: unsupported level %d", level)
	}
	parityShards := level.parityShards()
	if len(buffers) < diskmax+parityShards {
		return fmt.Errorf("raidcode: need %d buffers for diskmax=%d level=%d, got %d",
			diskmax+parityShards, diskmax, level, len(buffers))
	}

	enc, err := reedsolomon.New(diskmax, parityShards)
	if err != nil {
		return fmt.Errorf("raidcode: construct encoder: %w", err)
	}

	shards := make([][]byte, diskmax+parityShards)
	for j := 0; j < diskmax; j++ {
		if len(buffers[j]) != blockSize {
			return fmt.Errorf("raidcode: data buffer %d has length %d, want %d", j, len(buffers[j]), blockSize)
		}
		shards[j] = buffers[j]
	}
	for p := 0; p < parityShards; p++ {
		if len(buffers[diskmax+p]) != blockSize {
			buffers[diskmax+p] = make([]byte, blockSize)
		}
		shards[diskmax+p] = buffers[diskmax+p]
	}

	if err := enc.Encode(shards); err != nil {
		return fmt.Errorf("raidcode: encode: %w", err)
	}
	return nil
}
