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

// Package blockhash computes the keyed content hash the scrub core
// compares against each block's stored fingerprint.
package blockhash

import (
	"github.com/minio/highwayhash"
)

// Size is HASH_SIZE from the spec: the fixed length in bytes of a block
// fingerprint.
const Size = 16

// Seed is the process-wide key fixed at array creation. HighwayHash-128
// requires a 32-byte key.
type Seed [32]byte

// Sum returns the keyed digest of data under seed.
func Sum(seed Seed, data []byte) ([Size]byte, error) {
	h, err := highwayhash.New128(seed[:])
	if err != nil {
		return [Size]byte{}, err
	}
	if _, err := h.Write(data); err != nil {
		return [Size]byte{}, err
	}
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Equal does a constant-length comparison of two fingerprints, per the
// spec's requirement that comparison be a fixed HASH_SIZE byte compare.
func Equal(a, b [Size]byte) bool {
	var diff byte
	for i := 0; i < Size; i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
