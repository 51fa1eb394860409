// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench drives bounded queues with concurrent producers and
// consumers and reports how many items moved through them.
package bench

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Queue is the non-blocking surface the harness needs.
type Queue[T any] interface {
	TryAdd(item T) bool
	TryTake() (T, bool)
}

// Config is the goroutine layout of one timed run.
type Config struct {
	Producers int
	Consumers int
}

// Result is the outcome of a timed run.
type Result struct {
	Produced int64
	Consumed int64
	Elapsed  time.Duration
}

// Throughput returns consumed items per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Consumed) / r.Elapsed.Seconds()
}

// RunTimed runs cfg.Producers producers and cfg.Consumers consumers against
// q until ctx is done. Producers then stop and consumers drain every item
// that was added, so Produced equals Consumed on return. gen builds the
// item for a global sequence number.
//
// With no consumers, items left in q after production stops are not drained.
func RunTimed[T any](ctx context.Context, q Queue[T], cfg Config, gen func(int) T) Result {
	var produced, consumed, seq atomix.Int64
	var stopped, producersDone atomix.Bool

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stopped.Store(true)
		case <-done:
		}
	}()

	start := time.Now()

	var prodWg sync.WaitGroup
	for range cfg.Producers {
		prodWg.Add(1)
		go func() {
			defer prodWg.Done()
			sw := spin.Wait{}
			for !stopped.Load() {
				item := gen(int(seq.Add(1) - 1))
				for !q.TryAdd(item) {
					if stopped.Load() {
						return
					}
					sw.Once()
				}
				sw.Reset()
				produced.Add(1)
			}
		}()
	}

	var consWg sync.WaitGroup
	for range cfg.Consumers {
		consWg.Add(1)
		go func() {
			defer consWg.Done()
			sw := spin.Wait{}
			for {
				if _, ok := q.TryTake(); ok {
					consumed.Add(1)
					sw.Reset()
					continue
				}
				if producersDone.Load() && consumed.Load() >= produced.Load() {
					return
				}
				sw.Once()
			}
		}()
	}

	prodWg.Wait()
	producersDone.Store(true)
	consWg.Wait()

	return Result{
		Produced: produced.Load(),
		Consumed: consumed.Load(),
		Elapsed:  time.Since(start),
	}
}

// MixedResult is the outcome of RunMixed.
type MixedResult struct {
	Adds     int64 // Successful TryAdd calls
	Rejected int64 // TryAdd calls that found the queue full
	Takes    int64 // Successful TryTake calls
	Empty    int64 // TryTake calls that found the queue empty
	Elapsed  time.Duration
}

// RunMixed runs threads goroutines that each perform iterations operations
// on q, two adds for every take, and waits for all of them.
func RunMixed[T any](q Queue[T], threads, iterations int, item T) MixedResult {
	var adds, rejected, takes, empty atomix.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for range threads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var a, r, t, e int64
			for j := range iterations {
				if j%3 != 2 {
					if q.TryAdd(item) {
						a++
					} else {
						r++
					}
					continue
				}
				if _, ok := q.TryTake(); ok {
					t++
				} else {
					e++
				}
			}
			adds.Add(a)
			rejected.Add(r)
			takes.Add(t)
			empty.Add(e)
		}()
	}
	wg.Wait()

	return MixedResult{
		Adds:     adds.Load(),
		Rejected: rejected.Load(),
		Takes:    takes.Load(),
		Empty:    empty.Load(),
		Elapsed:  time.Since(start),
	}
}
