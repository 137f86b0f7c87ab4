// Package trial implements the trial driver (C7) and completion loop (C6):
// the orchestration of prepare -> warmup -> measured -> drain for a single
// TrialSpec, built from the preallocated C1-C5 components and a single
// ioback.Backend, with no per-completion heap allocation in the measured
// window. Grounded on the worker loops in jolt's pkg/engine/{uring,
// libaio}.go, generalized from "N independent goroutines racing a token
// bucket" into the spec's single completion-thread-per-trial design.
package trial

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/diskbench/diskbench/internal/histogram"
	"github.com/diskbench/diskbench/internal/ioback"
	"github.com/diskbench/diskbench/internal/ioslot"
	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/internal/offsetgen"
	"github.com/diskbench/diskbench/internal/pool"
	"github.com/diskbench/diskbench/internal/result"
	"github.com/diskbench/diskbench/internal/timeseries"
)

// DrainTimeout bounds how long the driver waits for in-flight I/Os to
// finish after the measured deadline before abandoning them (§4.6 step 3).
const DrainTimeout = 5 * time.Second

// waitPollTimeout is how long each Backend.Wait call blocks before
// returning with nothing ready, keeping deadline checks prompt (§4.6).
const waitPollTimeout = 10 * time.Millisecond

// progressInterval is the driver's publish cadence, ~4Hz per §4.7.
const progressInterval = 250 * time.Millisecond

type phase int

const (
	phaseWarming phase = iota
	phaseMeasuring
	phaseDraining
)

func (p phase) String() string {
	switch p {
	case phaseMeasuring:
		return "measuring"
	case phaseDraining:
		return "draining"
	default:
		return "warming"
	}
}

// Driver runs one trial end to end. It owns C1 (pool), C2 (slot table),
// C3 (histogram), C4 (time-series ring), and one offsetgen.Generator per
// slot (C5); none of these cross trial boundaries (§3 lifecycle).
type Driver struct {
	spec    model.TrialSpec
	backend ioback.Backend

	pool  *pool.Pool
	slots *ioslot.Table
	gens  []*offsetgen.Generator
	hist  *histogram.Histogram
	ring  *timeseries.Ring

	completionBuf []ioback.Completion

	totalBytes int64 // atomic; written by the completion thread, read by the progress publisher
	totalOps   int64 // atomic; same
	phaseState int32 // atomic; phase, mirrored here so the publisher can read it safely

	reads, writes, errorOps int64
	abandonedOnDrain        int
	drainTimedOut           bool
	wasCancelled            bool
}

// ErrFileTooSmall mirrors the §4.6 edge-case guard: the engine does not
// run with file_size < block_size * queue_depth.
var ErrFileTooSmall = fmt.Errorf("trial: file_size must be >= block_size * queue_depth")

// New builds a driver for spec, backed by backend, with buffers aligned
// to sectorSize (the physical sector size C8 discovered, or its 4096
// fallback).
func New(spec model.TrialSpec, backend ioback.Backend, sectorSize int) (*Driver, error) {
	w := spec.Workload
	if w.FileSize < w.BlockSize*int64(w.QueueDepth) {
		return nil, ErrFileTooSmall
	}

	p, err := pool.New(w.QueueDepth, int(w.BlockSize), sectorSize)
	if err != nil {
		return nil, err
	}

	slots := ioslot.New(w.QueueDepth)
	gens := make([]*offsetgen.Generator, w.QueueDepth)
	pat := offsetgen.Sequential
	if w.Pattern == model.Random {
		pat = offsetgen.Random
	}
	for i := range gens {
		gens[i] = offsetgen.New(pat, w.FileSize, w.BlockSize, int64(sectorSize), w.Seed, i, w.QueueDepth)
	}

	// ticks are nanoseconds (time.Now().UnixNano()); 1000 ticks = 1us.
	hist := histogram.New(1000.0)
	ring := timeseries.New(spec.MeasuredDuration.Seconds(), 1e9, 0)

	return &Driver{
		spec:          spec,
		backend:       backend,
		pool:          p,
		slots:         slots,
		gens:          gens,
		hist:          hist,
		ring:          ring,
		completionBuf: make([]ioback.Completion, w.QueueDepth),
	}, nil
}

// Release frees the pool's backing allocation. Must be called once the
// trial is finished; C1/C2 do not cross trial boundaries (§3).
func (d *Driver) Release() {
	d.pool.Release()
}

func nowTicks() int64 { return time.Now().UnixNano() }

func coinFlip(r *rand.Rand, writePercent int) bool {
	if writePercent <= 0 {
		return false
	}
	if writePercent >= 100 {
		return true
	}
	return r.Intn(100) < writePercent
}

// Run drives prepare(already done)->warmup->measured->drain to
// completion. ctx cancellation triggers the cooperative-cancel path
// (§5): the phase moves to Draining immediately and outstanding I/Os are
// awaited up to DrainTimeout. progressFn, if non-nil, receives ~4Hz
// progress snapshots via a bounded single-producer/single-consumer
// handoff that drops samples under backpressure rather than blocking the
// completion thread (§4.7, §9).
func (d *Driver) Run(ctx context.Context, progressFn func(model.Progress)) (model.TrialResult, error) {
	w := d.spec.Workload
	blockSize := int(w.BlockSize)
	dirRNG := rand.New(rand.NewSource(w.Seed ^ 0x5eed))

	startTicks := nowTicks()
	warmupDeadline := startTicks + d.spec.WarmupDuration.Nanoseconds()
	measuredDeadline := warmupDeadline + d.spec.MeasuredDuration.Nanoseconds()
	totalDuration := d.spec.WarmupDuration + d.spec.MeasuredDuration

	ph := phaseWarming
	var measuredStartTicks int64
	var drainStartTicks int64

	if progressFn != nil {
		stop := d.startProgressPublisher(startTicks, totalDuration, progressFn)
		defer stop()
	}

	// Initial priming: submit one I/O per slot (§4.6 step 1).
	for i := 0; i < d.slots.Len(); i++ {
		isWrite := coinFlip(dirRNG, w.WritePercent)
		offset := d.gens[i].Next()
		buf := d.pool.Buffer(i)[:blockSize]
		d.slots.Configure(i, offset, blockSize, isWrite, startTicks)
		if err := d.backend.Submit(ioback.SubmitRequest{SlotIndex: i, Offset: offset, Buffer: buf, IsWrite: isWrite}); err != nil {
			continue // SubmitFailed: slot stays Idle (§7)
		}
		d.slots.MarkPending(i)
	}

	for {
		now := nowTicks()

		if ph == phaseWarming && now >= warmupDeadline {
			// Adopted contract (§9 open question): a completion is
			// assigned to the phase in which it is *processed*, so the
			// reset happens once here, before this iteration's
			// completions (if any straddle the boundary) are recorded.
			d.hist.Reset()
			d.ring.Reset(now)
			measuredStartTicks = now
			ph = phaseMeasuring
			atomic.StoreInt32(&d.phaseState, int32(ph))
		}
		if ph == phaseMeasuring && now >= measuredDeadline {
			ph = phaseDraining
			drainStartTicks = now
			atomic.StoreInt32(&d.phaseState, int32(ph))
		}

		select {
		case <-ctx.Done():
			if ph != phaseDraining {
				ph = phaseDraining
				drainStartTicks = now
				atomic.StoreInt32(&d.phaseState, int32(ph))
			}
			d.wasCancelled = true
		default:
		}

		if ph == phaseDraining && d.slots.InFlightCount() == 0 {
			break
		}
		if ph == phaseDraining && now-drainStartTicks > DrainTimeout.Nanoseconds() {
			d.abandonRemaining()
			d.drainTimedOut = true
			break
		}

		n, err := d.backend.Wait(d.completionBuf, waitPollTimeout)
		if err != nil {
			// The backend itself faulted (not a single completion's
			// error status); nothing to reap this iteration, try again
			// until a deadline or cancellation ends the loop.
			continue
		}

		for i := 0; i < n; i++ {
			c := d.completionBuf[i]
			slot, ok := d.slots.FindByToken(uint64(c.SlotIndex))
			if !ok {
				continue
			}
			latency := now - slot.SubmitTicks
			isWrite := slot.IsWrite

			if ph == phaseMeasuring {
				if c.Err != nil {
					d.errorOps++
				} else {
					d.hist.Record(latency)
					d.ring.Record(now, int64(c.N), isWrite)
					atomic.AddInt64(&d.totalBytes, int64(c.N))
					if isWrite {
						d.writes++
					} else {
						d.reads++
					}
				}
				// totalOps is bumped last, after the histogram/ring
				// writes it accounts for, so a progress reader observing
				// total_ops via an acquire load sees a consistent count
				// of already-recorded histogram entries (§5).
				atomic.AddInt64(&d.totalOps, 1)
			}

			d.slots.MarkCompleted(c.SlotIndex)

			switch {
			case c.Err != nil:
				// Do not resubmit: prevents a tight error loop (§4.6).
				d.slots.MarkIdle(c.SlotIndex)
			case ph == phaseDraining:
				d.slots.MarkIdle(c.SlotIndex)
			default:
				nextWrite := coinFlip(dirRNG, w.WritePercent)
				offset := d.gens[c.SlotIndex].Next()
				buf := d.pool.Buffer(c.SlotIndex)[:blockSize]
				d.slots.Configure(c.SlotIndex, offset, blockSize, nextWrite, now)
				if err := d.backend.Submit(ioback.SubmitRequest{SlotIndex: c.SlotIndex, Offset: offset, Buffer: buf, IsWrite: nextWrite}); err != nil {
					d.slots.MarkIdle(c.SlotIndex)
				} else {
					d.slots.MarkPending(c.SlotIndex)
				}
			}
		}
	}

	finalNow := nowTicks()
	wall := time.Duration(finalNow - measuredStartTicks)
	if measuredStartTicks == 0 {
		wall = time.Duration(finalNow - startTicks)
	}

	tr := result.BuildTrialResult(d.spec.TrialIndex, d.hist, d.ring,
		atomic.LoadInt64(&d.totalBytes), atomic.LoadInt64(&d.totalOps),
		d.reads, d.writes, d.errorOps, wall, d.spec.CollectTimeSeries)

	tr.WasCancelled = d.wasCancelled
	tr.DrainTimedOut = d.drainTimedOut
	tr.AbandonedOnDrain = d.abandonedOnDrain
	if d.wasCancelled {
		tr.Annotations = append(tr.Annotations, "cancelled")
	}
	if d.drainTimedOut {
		tr.Annotations = append(tr.Annotations, "drain timeout")
	}

	return tr, nil
}

// abandonRemaining marks every still-InFlight slot Idle and counts it as
// abandoned on drain (§7 DrainTimeout).
func (d *Driver) abandonRemaining() {
	for i := 0; i < d.slots.Len(); i++ {
		if d.slots.Slot(i).State == ioslot.InFlight {
			d.slots.MarkIdle(i)
			d.abandonedOnDrain++
		}
	}
}

// startProgressPublisher runs the ~4Hz publisher goroutine described in
// §4.7/§5/§9: it reads the atomic counters with acquire ordering and
// hands a Progress snapshot to a single-slot channel, dropping the sample
// if the previous one has not been drained yet. A second goroutine drains
// that channel and invokes progressFn, so a slow callback never stalls
// either the ticker or (transitively) the completion thread. The
// returned stop function halts both goroutines.
func (d *Driver) startProgressPublisher(startTicks int64, duration time.Duration, progressFn func(model.Progress)) (stop func()) {
	slot := make(chan model.Progress, 1)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		var lastBytes, lastOps int64
		lastTicks := startTicks

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				now := nowTicks()
				bytes := atomic.LoadInt64(&d.totalBytes)
				ops := atomic.LoadInt64(&d.totalOps)

				elapsedSec := float64(now-lastTicks) / 1e9
				var bps, iops float64
				if elapsedSec > 0 {
					bps = float64(bytes-lastBytes) / elapsedSec
					iops = float64(ops-lastOps) / elapsedSec
				}
				lastBytes, lastOps, lastTicks = bytes, ops, now

				p := model.Progress{
					Phase:          phase(atomic.LoadInt32(&d.phaseState)).String(),
					Elapsed:        time.Duration(now - startTicks),
					Duration:       duration,
					BytesSoFar:     bytes,
					OpsSoFar:       ops,
					BytesPerSecond: bps,
					IOPS:           iops,
				}
				select {
				case slot <- p:
				default: // drop under backpressure; never block the ticker
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-done:
				return
			case p := <-slot:
				progressFn(p)
			}
		}
	}()

	return func() { close(done) }
}
