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

// Package blockinfo implements the packed per-block metadata record used
// by the scrub core to decide which blocks are eligible for
// verification: whether a block is allocated, when it was last checked
// clean, and whether it carries an unresolved silent error.
package blockinfo

import "time"

// Info is a packed per-block record: bit 31 is the used flag, bit 30 is
// the error flag, and bits [0,30) hold the last-checked time as a count
// of days since the Unix epoch. The zero value is reserved to mean
// "unused / no info" and is never produced by Make or SetError for a
// used block.
type Info uint32

const (
	usedBit  = uint32(1) << 31
	errorBit = uint32(1) << 30
	timeMask = errorBit - 1
)

// Day is a coarse day-granularity timestamp, the unit blockinfo packs
// into Info. Callers convert from time.Time with DayOf.
type Day uint32

// DayOf truncates t to the blockinfo package's day resolution.
func DayOf(t time.Time) Day {
	return Day(t.Unix() / 86400)
}

// Time expands a Day back to the instant at the start of that day, UTC.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// Make builds a used Info for the given day, with the error bit set iff
// hasError.
func Make(t Day, hasError bool) Info {
	v := usedBit | (uint32(t) & timeMask)
	if hasError {
		v |= errorBit
	}
	return Info(v)
}

// Used reports whether this record represents an allocated block.
func (i Info) Used() bool {
	return uint32(i)&usedBit != 0
}

// Time returns the last-checked day recorded in i. Callers must not call
// this on an unused Info.
func (i Info) Time() Day {
	return Day(uint32(i) & timeMask)
}

// Error reports whether i carries an unresolved silent-error flag.
func (i Info) Error() bool {
	return uint32(i)&errorBit != 0
}

// SetError returns a copy of i with the error bit set, preserving the
// existing time field, per the scrub loop's classification rule that a
// silent error must not clobber the block's last-known-good time.
func (i Info) SetError() Info {
	return Info(uint32(i) | errorBit)
}

// CompareTime gives a total order over two Info values by their time
// field only, used to sort blocks oldest-first during planning. Unused
// blocks must never reach this comparison.
func CompareTime(a, b Info) int {
	at, bt := a.Time(), b.Time()
	switch {
	case at < bt:
		return -1
	case at > bt:
		return 1
	default:
		return 0
	}
}
