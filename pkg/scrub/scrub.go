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
	"context"
	"fmt"
	"time"

	"github.com/snaparray/scrubcore/pkg/blockhash"
	"github.com/snaparray/scrubcore/pkg/blockinfo"
	"github.com/snaparray/scrubcore/pkg/raidcode"
)

// Config wires together one scrub run. Disks, Pool and Store must all
// agree on DiskMax/BlockMax; Run does not cross-check them beyond what
// it needs to size its own buffers.
type Config struct {
	Store InfoStore
	Disks []Disk // len(Disks) == Pool.DiskMax(); a nil entry is a vacant slot.
	Pool  HandlePool

	Level     raidcode.Level
	Parity    ParityFile
	QParity   ParityFile // required iff Level == raidcode.LevelDual
	BlockSize int

	HashSeed blockhash.Seed

	// Quota and RecencyGuard feed Plan. The zero value of Quota means
	// DefaultQuota; a zero RecencyGuard means DefaultRecencyGuard.
	Quota        Quota
	RecencyGuard time.Duration

	// Autosave is the byte budget between checkpoints, mirroring the
	// original's "autosave / (diskmax*block_size)" cadence. Zero
	// disables autosave entirely.
	Autosave int64

	Progress ProgressReporter // nil disables progress reporting
	Metrics  MetricsSink      // nil disables metrics
	Logger   Logger           // nil disables block-error logging

	// Now defaults to time.Now. Tests inject a fixed clock.
	Now Clock
}

// Report summarizes one completed (or stopped) run.
type Report struct {
	BlockMax  int64
	CountMax  int64
	Processed int64
	Clean     int64
	Silent    int64
	Transient int64
	Skipped   int64
	BytesRead int64
	Stopped   bool // true if ProgressReporter.Report asked to stop early
	NeedWrite bool
}

func (c *Config) quota() Quota {
	if c.Quota.Den == 0 {
		return DefaultQuota
	}
	return c.Quota
}

func (c *Config) recencyGuard() time.Duration {
	if c.RecencyGuard == 0 {
		return DefaultRecencyGuard
	}
	return c.RecencyGuard
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// stripeBuffers is the reusable D+2P buffer set (C3) for one block
// index: diskmax data buffers followed by one buffer per parity level.
type stripeBuffers struct {
	data    [][]byte
	parity  []byte
	qparity []byte
	all     [][]byte // data..., parity, [qparity] — what raidcode.Gen expects
}

func newStripeBuffers(diskmax, blockSize int, level raidcode.Level) *stripeBuffers {
	parityShards := int(level)
	all := make([][]byte, diskmax+parityShards)
	backing := make([]byte, (diskmax+parityShards)*blockSize)
	for i := range all {
		all[i] = backing[i*blockSize : (i+1)*blockSize]
	}
	sb := &stripeBuffers{data: all[:diskmax], parity: all[diskmax], all: all}
	if level == raidcode.LevelDual {
		sb.qparity = all[diskmax+1]
	}
	return sb
}

// Run is the scrub core's single entry point (C5/C6): it plans the
// window via Plan, then walks blocks blockstart..blocklimit re-reading
// every data disk, recomputing parity, comparing against what is
// stored, and updating cfg.Store accordingly. It never repairs
// anything; its only side effects are info-index updates, periodic
// autosave checkpoints, progress/metrics/logging calls, and its
// returned Report.
//
// Run returns a non-nil error only for the one setup failure Plan can
// report (an empty array) and for a fatal close failure reported by
// Pool.ReadStripe partway through the loop; both mirror exit paths in
// the original scrub implementation that likewise abort the whole run.
func Run(ctx context.Context, cfg Config) (Report, error) {
	blockmax := cfg.Store.BlockMax()
	now := cfg.now()

	timelimit, countlimit, err := Plan(cfg.Store, now, cfg.quota(), cfg.recencyGuard())
	if err != nil {
		return Report{BlockMax: blockmax}, err
	}

	diskmax := cfg.Pool.DiskMax()
	sb := newStripeBuffers(diskmax, cfg.BlockSize, cfg.Level)

	// Every handle the pool opened gets a close attempt on every exit
	// path, mirroring the original's bail: label.
	defer func() {
		for _, cerr := range cfg.Pool.CloseAll() {
			if cfg.Logger != nil {
				cfg.Logger.Fatalf("scrub: close failed on a data disk: %v", cerr)
			}
		}
	}()

	report := Report{BlockMax: blockmax}

	// Pre-pass: count the blocks in this run's window and find
	// blocklimit, the index at which we stop even if blockmax is
	// further out, once countlimit eligible blocks have been seen.
	var countmax int64
	blocklimit := blockmax
	for i := int64(0); i < blockmax; i++ {
		info := cfg.Store.Get(i)
		if !info.Used() {
			continue
		}
		if info.Time() > timelimit {
			continue
		}
		if countmax >= countlimit {
			blocklimit = i
			break
		}
		countmax++
	}
	report.CountMax = countmax

	var autosavelimit int64
	if cfg.Autosave != 0 && diskmax > 0 && cfg.BlockSize > 0 {
		autosavelimit = cfg.Autosave / int64(diskmax*cfg.BlockSize)
	}
	autosavemissing := countmax
	var autosavedone int64
	var countpos int64

	if cfg.Progress != nil {
		cfg.Progress.Begin(0, blockmax, countmax)
		defer func() { cfg.Progress.End(countpos, countmax, report.BytesRead) }()
	}

	var closeErr error
	var closeErrBlock int64

	for i := int64(0); i < blocklimit; i++ {
		info := cfg.Store.Get(i)
		if !info.Used() || info.Time() > timelimit {
			report.Skipped++
			if cfg.Metrics != nil {
				cfg.Metrics.ObserveBlock(Skipped)
			}
			continue
		}

		autosavedone++
		autosavemissing--

		state, n, readErr := cfg.processBlock(ctx, i, sb)
		if readErr != nil {
			closeErr = readErr
			closeErrBlock = i
			break
		}

		switch state {
		case Transient:
			report.Transient++
		case Silent:
			cfg.Store.Set(i, info.SetError())
			report.Silent++
		case Clean:
			cfg.Store.Set(i, blockinfo.Make(blockinfo.DayOf(now), false))
			report.Clean++
		}
		cfg.Store.MarkDirty()
		if cfg.Metrics != nil {
			cfg.Metrics.ObserveBlock(state)
			cfg.Metrics.ObserveBytesRead(int64(n))
		}

		countpos++
		report.Processed++
		report.BytesRead += int64(n)

		if cfg.Progress != nil && cfg.Progress.Report(i, countpos, countmax, report.BytesRead) {
			report.Stopped = true
			break
		}

		if autosavelimit != 0 && autosavedone >= autosavelimit && autosavemissing >= autosavelimit {
			autosavedone = 0
			if cfg.Progress != nil {
				cfg.Progress.Pause()
			}
			if err := cfg.Store.Write(ctx); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Fatalf("scrub: autosave failed: %v", err)
				}
			}
			if cfg.Progress != nil {
				cfg.Progress.Resume()
			}
		}
	}

	report.NeedWrite = cfg.Store.NeedWrite()

	if closeErr != nil {
		return report, fmt.Errorf("scrub: aborting at block %d: %w", closeErrBlock, closeErr)
	}
	return report, nil
}

// processBlock runs one block index through the per-disk read/hash pass
// and, if that pass found nothing wrong, the parity pass. It returns
// the terminal BlockState (one of Clean, Silent, Transient) and the
// number of data bytes actually read (for progress/metrics).
//
// readErr is non-nil only for the fatal close failure HandlePool can
// report; every other failure is folded into the returned BlockState.
func (cfg *Config) processBlock(ctx context.Context, i int64, sb *stripeBuffers) (BlockState, int, error) {
	outcomes, fatal := cfg.Pool.ReadStripe(ctx, i, sb.data)
	if fatal != nil {
		return Transient, 0, fatal
	}

	var errorOnBlock, silentOnBlock bool
	var bytesRead int

	for j, out := range outcomes {
		if out.OpenErr != nil {
			cfg.logBlockError(i, cfg.diskName(j), out.Path, "Open error")
			errorOnBlock = true
			continue
		}
		if out.ReadErr != nil {
			cfg.logBlockError(i, cfg.diskName(j), out.Path, "Read error")
			errorOnBlock = true
			continue
		}
		if out.Path == "" {
			continue // vacant slot or no file at this index; buffer is already zeroed
		}
		bytesRead += out.N

		block, ok := cfg.Disks[j].BlockAt(i)
		if !ok {
			continue
		}
		want, ok := block.Hash()
		if !ok {
			continue
		}
		got, err := blockhash.Sum(cfg.HashSeed, sb.data[j])
		if err != nil {
			errorOnBlock = true
			continue
		}
		if !blockhash.Equal(got, want) {
			cfg.logBlockError(i, cfg.diskName(j), out.Path, "Data error")
			silentOnBlock = true
		}
	}

	if errorOnBlock {
		return Transient, bytesRead, nil
	}
	if silentOnBlock {
		return Silent, bytesRead, nil
	}

	if err := cfg.Parity.ReadAt(ctx, i, sb.parity); err != nil {
		cfg.logBlockError(i, "parity", "", "Read error")
		return Transient, bytesRead, nil
	}
	storedParity := append([]byte(nil), sb.parity...)

	var storedQParity []byte
	if cfg.Level == raidcode.LevelDual {
		if err := cfg.QParity.ReadAt(ctx, i, sb.qparity); err != nil {
			cfg.logBlockError(i, "qarity", "", "Read error")
			return Transient, bytesRead, nil
		}
		storedQParity = append([]byte(nil), sb.qparity...)
	}

	if err := raidcode.Gen(cfg.Level, sb.all, len(sb.data), cfg.BlockSize); err != nil {
		return Transient, bytesRead, nil
	}

	if !bytesEqual(sb.parity, storedParity) {
		cfg.logBlockError(i, "parity", "", "Data error")
		silentOnBlock = true
	}
	if cfg.Level == raidcode.LevelDual && !bytesEqual(sb.qparity, storedQParity) {
		cfg.logBlockError(i, "qarity", "", "Data error")
		silentOnBlock = true
	}

	if silentOnBlock {
		return Silent, bytesRead, nil
	}
	return Clean, bytesRead, nil
}

func (cfg *Config) diskName(j int) string {
	if j < 0 || j >= len(cfg.Disks) || cfg.Disks[j] == nil {
		return ""
	}
	return cfg.Disks[j].Name()
}

func (cfg *Config) logBlockError(index int64, source, path, kind string) {
	if cfg.Logger != nil {
		cfg.Logger.BlockError(index, source, path, kind)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
