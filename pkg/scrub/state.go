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

package scrub

// BlockState names the per-block state machine from the spec: the
// intermediate states a block passes through during one scrub pass, and
// the four terminal classifications that drive the info-index update.
// It carries no control-flow weight beyond what Run already does; it
// exists for logging and tests.
type BlockState int

const (
	// Skipped: unused, or too recent to be in this run's window.
	Skipped BlockState = iota
	// Reading: a disk read is in flight for this block (transient,
	// observable only mid-block).
	Reading
	// HashOK: every known block in the stripe matched its stored hash.
	HashOK
	// HashMismatch: at least one known block's hash did not match.
	HashMismatch
	// IOError: an open or read failed on at least one disk or parity
	// file for this block.
	IOError
	// ParityOK: recomputed parity matched the on-disk parity.
	ParityOK
	// ParityMismatch: recomputed parity differed from on-disk parity.
	ParityMismatch

	// Clean: terminal. Info updated to (now, error=0).
	Clean
	// Silent: terminal. Error bit set, time preserved.
	Silent
	// Transient: terminal. Info left unchanged.
	Transient
)

func (s BlockState) String() string {
	switch s {
	case Skipped:
		return "Skipped"
	case Reading:
		return "Reading"
	case HashOK:
		return "HashOK"
	case HashMismatch:
		return "HashMismatch"
	case IOError:
		return "IOError"
	case ParityOK:
		return "ParityOK"
	case ParityMismatch:
		return "ParityMismatch"
	case Clean:
		return "Clean"
	case Silent:
		return "Silent"
	case Transient:
		return "Transient"
	default:
		return "Unknown"
	}
}
