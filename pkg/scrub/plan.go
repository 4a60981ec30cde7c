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

import (
	"errors"
	"sort"
	"time"

	"github.com/snaparray/scrubcore/pkg/blockinfo"
)

// ErrEmptyArray is returned by Plan when no block in the array is used.
var ErrEmptyArray = errors.New("scrub: array appears to be empty")

// Quota is the fraction of the array to scrub in one run by default,
// e.g. 1/12.
type Quota struct {
	Num, Den int64
}

func (q Quota) apply(blockmax int64) int64 {
	if q.Den <= 0 {
		return 0
	}
	return blockmax * q.Num / q.Den
}

// DefaultQuota matches the original source's "by default scrub 1/12 of
// the array".
var DefaultQuota = Quota{Num: 1, Den: 12}

// DefaultRecencyGuard matches the original source's 10-day guard.
const DefaultRecencyGuard = 10 * 24 * time.Hour

// Plan implements the selection planner (C4): it computes the
// (timelimit, countlimit) pair the scrub loop uses to sample the
// oldest-first countlimit blocks whose last-check time is at most
// timelimit, never scrubbing anything younger than recencyGuard.
func Plan(store InfoStore, now time.Time, quota Quota, recencyGuard time.Duration) (timelimit blockinfo.Day, countlimit int64, err error) {
	blockmax := store.BlockMax()

	times := make([]blockinfo.Day, 0, blockmax)
	for i := int64(0); i < blockmax; i++ {
		info := store.Get(i)
		if !info.Used() {
			continue
		}
		times = append(times, info.Time())
	}

	if len(times) == 0 {
		return 0, 0, ErrEmptyArray
	}

	sort.Slice(times, func(a, b int) bool { return times[a] < times[b] })

	countlimit = quota.apply(blockmax)
	if countlimit >= int64(len(times)) {
		countlimit = int64(len(times)) - 1
	}
	if countlimit < 0 {
		countlimit = 0
	}

	timelimit = times[countlimit]

	recentGuardDay := blockinfo.DayOf(now.Add(-recencyGuard))
	if timelimit > recentGuardDay {
		timelimit = recentGuardDay
	}

	return timelimit, countlimit, nil
}
