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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/minio/cli"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/snaparray/scrubcore/internal/config"
	"github.com/snaparray/scrubcore/internal/logger"
	"github.com/snaparray/scrubcore/pkg/blockhash"
	"github.com/snaparray/scrubcore/pkg/diskpool"
	"github.com/snaparray/scrubcore/pkg/flatdisk"
	"github.com/snaparray/scrubcore/pkg/metrics"
	"github.com/snaparray/scrubcore/pkg/parity"
	"github.com/snaparray/scrubcore/pkg/progress"
	"github.com/snaparray/scrubcore/pkg/raidcode"
	"github.com/snaparray/scrubcore/pkg/scrub"
	"github.com/snaparray/scrubcore/pkg/statestore"
)

var scrubCommandFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config",
		Value: "array.yaml",
		Usage: "path to the array configuration",
	},
	cli.StringFlag{
		Name:  "state",
		Value: "scrub-state.json",
		Usage: "path to the persistent block-info snapshot",
	},
	cli.Int64Flag{
		Name:  "num",
		Usage: "override the configured count-quota numerator",
	},
	cli.Int64Flag{
		Name:  "den",
		Usage: "override the configured count-quota denominator",
	},
}

var scrubCmd = cli.Command{
	Name:   "scrub",
	Usage:  "scan the oldest-unverified blocks of an array for silent corruption",
	Flags:  scrubCommandFlags,
	Action: scrubCommandAction,
}

// openArray wires every external collaborator scrub.Run needs from a
// loaded config.Array: the data disks, the parity files, and the disk
// handle pool. Callers are responsible for closing the returned disks
// and parity files once the run (and its deferred HandlePool.CloseAll)
// has finished.
func openArray(ctx context.Context, arr *config.Array) (disks []scrub.Disk, pool *diskpool.Pool, pf, qf *parity.File, err error) {
	disks = make([]scrub.Disk, len(arr.Disks))
	for i, d := range arr.Disks {
		if d.Path == "" {
			continue // vacant slot
		}
		fd, ferr := flatdisk.Open(d.Name, d.Path, "", arr.BlockSize)
		if ferr != nil {
			err = fmt.Errorf("scrubd: open disk %s: %w", d.Name, ferr)
			return
		}
		disks[i] = fd
	}

	pf, err = parity.Open(ctx, arr.Parity, arr.BlockSize, true)
	if err != nil {
		err = fmt.Errorf("scrubd: open parity: %w", err)
		return
	}
	if arr.Level == int(raidcode.LevelDual) {
		qf, err = parity.Open(ctx, arr.QParity, arr.BlockSize, true)
		if err != nil {
			err = fmt.Errorf("scrubd: open qarity: %w", err)
			return
		}
	}

	pool = diskpool.NewPool(disks, true)
	return
}

func closeDisks(disks []scrub.Disk) {
	for _, d := range disks {
		if closer, ok := d.(*flatdisk.Disk); ok {
			if err := closer.Close(); err != nil {
				logger.LogIf(err, "scrubd: closing data disk")
			}
		}
	}
}

func scrubCommandAction(ctx *cli.Context) error {
	if ctx.GlobalBool("quiet") {
		logger.EnableQuiet()
	}
	if ctx.GlobalBool("json") {
		logger.EnableJSON()
	}

	arr, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}
	if ctx.IsSet("num") || ctx.IsSet("den") {
		if ctx.IsSet("num") {
			arr.CountQuota.Num = ctx.Int64("num")
		}
		if ctx.IsSet("den") {
			arr.CountQuota.Den = ctx.Int64("den")
		}
	}

	seed, err := arr.Seed()
	if err != nil {
		return fmt.Errorf("scrubd: %w", err)
	}

	blockmax, err := parity.Size(arr.Parity, arr.BlockSize)
	if err != nil {
		return fmt.Errorf("scrubd: %w", err)
	}

	store, err := statestore.Load(ctx.String("state"), blockmax)
	if err != nil {
		return fmt.Errorf("scrubd: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disks, pool, pf, qf, err := openArray(runCtx, arr)
	if err != nil {
		return err
	}
	defer closeDisks(disks)
	defer pf.Close()
	if qf != nil {
		defer qf.Close()
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(reg)
	if err != nil {
		return fmt.Errorf("scrubd: registering metrics: %w", err)
	}

	reporter := progress.New(ctx.GlobalBool("quiet"))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		if _, ok := <-sigs; ok {
			logger.Println("scrubd: stop requested, finishing current block")
			reporter.Stop()
		}
	}()

	cfg := scrub.Config{
		Store:     store,
		Disks:     disks,
		Pool:      pool,
		Level:     raidcode.Level(arr.Level),
		Parity:    pf,
		QParity:   qf,
		BlockSize: arr.BlockSize,
		HashSeed:  blockhash.Seed(seed),
		Quota: scrub.Quota{
			Num: arr.CountQuota.Num,
			Den: arr.CountQuota.Den,
		},
		RecencyGuard: arr.RecencyGuard(),
		Autosave:     arr.Autosave,
		Progress:     reporter,
		Metrics:      sink,
		Logger:       logger.Default{},
	}

	report, runErr := scrub.Run(runCtx, cfg)

	logger.Printf("scrubd: processed=%d clean=%d silent=%d transient=%d skipped=%d bytes=%d stopped=%v\n",
		report.Processed, report.Clean, report.Silent, report.Transient, report.Skipped, report.BytesRead, report.Stopped)

	if report.NeedWrite {
		if werr := store.Write(context.Background()); werr != nil {
			logger.FatalIf(werr, "scrubd: final checkpoint failed")
		}
	}

	if runErr != nil {
		return runErr
	}
	if report.Silent > 0 {
		return fmt.Errorf("scrubd: %d block(s) failed verification", report.Silent)
	}
	return nil
}
