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

// Package progress implements the scrub core's progress reporter (C10),
// a terminal bar that can be paused around a synchronous autosave and
// supports cooperative cancellation.
package progress

import (
	"sync/atomic"

	"github.com/cheggaaa/pb"
	humanize "github.com/dustin/go-humanize"
)

// Reporter implements scrub.ProgressReporter with a cheggaaa/pb bar.
// The zero value is not usable; construct with New.
type Reporter struct {
	bar     *pb.ProgressBar
	stopped int32
	quiet   bool
}

// New builds a Reporter. If quiet is true, no bar is drawn and Report
// only checks the stop flag — this is what cmd/scrubd uses when run
// with --quiet.
func New(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// Begin implements scrub.ProgressReporter.
func (r *Reporter) Begin(blockstart, blockmax, countmax int64) {
	atomic.StoreInt32(&r.stopped, 0)
	if r.quiet {
		return
	}
	bar := pb.New64(countmax)
	bar.ShowCounters = true
	bar.ShowTimeLeft = true
	bar.Prefix("Scrubbing ")
	bar.Start()
	r.bar = bar
}

// Report implements scrub.ProgressReporter. It advances the bar by one
// block and reports whether a cooperative Stop has been requested.
func (r *Reporter) Report(i int64, done, countmax int64, bytes int64) bool {
	if r.bar != nil {
		r.bar.Set64(done)
		r.bar.Postfix(" " + humanize.Bytes(uint64(bytes)))
	}
	return atomic.LoadInt32(&r.stopped) != 0
}

// Stop requests a cooperative stop; the scrub loop finishes its current
// block and then exits through the teardown path.
func (r *Reporter) Stop() {
	atomic.StoreInt32(&r.stopped, 1)
}

// Pause stops the bar's refresh goroutine for the duration of a
// synchronous autosave, so the bar does not redraw while the checkpoint
// is written.
func (r *Reporter) Pause() {
	if r.bar != nil {
		r.bar.Stop()
	}
}

// Resume restarts the bar's refresh goroutine after an autosave.
func (r *Reporter) Resume() {
	if r.bar != nil {
		r.bar.Start()
	}
}

// End implements scrub.ProgressReporter, finishing the bar.
func (r *Reporter) End(done, countmax int64, bytes int64) {
	if r.bar != nil {
		r.bar.Set64(done)
		r.bar.Finish()
	}
}
