// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/boundq"
	"code.hybscloud.com/iox"
)

// =============================================================================
// Test Helpers
// =============================================================================

// retryWithTimeout retries f until it returns true or timeout expires.
func retryWithTimeout(t *testing.T, timeout time.Duration, f func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	backoff := iox.Backoff{}
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout after %v: %s", timeout, msg)
		}
		backoff.Wait()
	}
}

// transferTest launches numP producers and numC consumers over one queue.
// Each producer adds itemsPerProd values encoded as producerID*100000+seq.
// Every value must be taken exactly once.
type transferTest struct {
	t            *testing.T
	numP, numC   int
	itemsPerProd int
	timeout      time.Duration

	// onTake, if set, is called by the consumer with the value just taken.
	// It is only safe to use with numC == 1.
	onTake func(v int)
}

func (tt *transferTest) run(q boundq.Queue[int]) {
	t := tt.t
	if boundq.RaceEnabled {
		t.Skip("skip: transfer test hands items between goroutines")
	}

	var wg sync.WaitGroup
	total := tt.numP * tt.itemsPerProd
	seen := make([]atomix.Int32, total)
	var consumed atomix.Int64
	var timedOut atomix.Bool

	for p := range tt.numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			deadline := time.Now().Add(tt.timeout)
			backoff := iox.Backoff{}
			for i := range tt.itemsPerProd {
				v := id*100000 + i
				for !q.TryAdd(v) {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	for range tt.numC {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(tt.timeout)
			backoff := iox.Backoff{}
			for consumed.Load() < int64(total) {
				if time.Now().After(deadline) {
					timedOut.Store(true)
					return
				}
				v, ok := q.TryTake()
				if !ok {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				id, seq := v/100000, v%100000
				if id < 0 || id >= tt.numP || seq < 0 || seq >= tt.itemsPerProd {
					t.Errorf("value out of range: %d", v)
				} else {
					seen[id*tt.itemsPerProd+seq].Add(1)
				}
				if tt.onTake != nil {
					tt.onTake(v)
				}
				consumed.Add(1)
			}
		}()
	}

	wg.Wait()
	if timedOut.Load() {
		t.Fatalf("timeout: consumed %d/%d", consumed.Load(), total)
	}

	var missing, duplicates int
	for i := range total {
		switch n := seen[i].Load(); {
		case n == 0:
			missing++
		case n > 1:
			duplicates++
		}
	}
	if missing > 0 || duplicates > 0 {
		t.Fatalf("transfer: missing=%d duplicates=%d of %d", missing, duplicates, total)
	}
	if _, ok := q.TryTake(); ok {
		t.Fatal("queue not empty after transfer")
	}
	if q.Len() != 0 {
		t.Fatalf("Len after transfer: got %d, want 0", q.Len())
	}
}

// =============================================================================
// No Loss, No Duplication
// =============================================================================

// TestTransferAllGuards runs many producers and consumers against every
// reservation strategy and both ring layouts.
func TestTransferAllGuards(t *testing.T) {
	for _, kind := range boundq.LockKinds {
		for _, small := range []bool{false, true} {
			name := kind.String()
			if small {
				name += "/small"
			}
			t.Run(name, func(t *testing.T) {
				b := boundq.New(64).Guard(kind)
				if small {
					b.Small()
				}
				q := boundq.MustBuild[int](b)
				tt := &transferTest{t: t, numP: 4, numC: 4, itemsPerProd: 5000, timeout: 20 * time.Second}
				tt.run(q)
			})
		}
	}
}

// TestTransferTinyCapacity forces constant full/empty transitions.
func TestTransferTinyCapacity(t *testing.T) {
	for _, kind := range boundq.LockKinds {
		t.Run(kind.String(), func(t *testing.T) {
			q := boundq.MustBuild[int](boundq.New(1).Guard(kind).Small())
			tt := &transferTest{t: t, numP: 3, numC: 3, itemsPerProd: 2000, timeout: 20 * time.Second}
			tt.run(q)
		})
	}
}

// =============================================================================
// Capacity Bound
// =============================================================================

// TestBoundUnderContention: 8 producers each attempt 1000 adds on a queue of
// capacity 100 while a single consumer drains it. The consumer is the only
// taker, so at every point between its own operations the number of
// successful adds it can observe exceeds the number of takes by at most 100.
func TestBoundUnderContention(t *testing.T) {
	if boundq.RaceEnabled {
		t.Skip("skip: bound test hands items between goroutines")
	}

	const (
		capacity  = 100
		producers = 8
		attempts  = 1000
	)

	for _, kind := range boundq.LockKinds {
		t.Run(kind.String(), func(t *testing.T) {
			q := boundq.MustBuild[int](boundq.New(capacity).Guard(kind))

			var added atomix.Int64
			var producing sync.WaitGroup
			var stop atomix.Bool

			for p := range producers {
				producing.Add(1)
				go func(id int) {
					defer producing.Done()
					for i := range attempts {
						if q.TryAdd(id*attempts + i) {
							added.Add(1)
						}
					}
				}(p)
			}

			// Len is advisory but must never exceed Cap.
			var sampling sync.WaitGroup
			var lenViolation atomix.Int64
			sampling.Add(1)
			go func() {
				defer sampling.Done()
				for !stop.Load() {
					if n := q.Len(); n > q.Cap() {
						lenViolation.Store(int64(n))
					}
				}
			}()

			var taken int64
			var maxOutstanding int64
			done := make(chan struct{})
			go func() {
				producing.Wait()
				close(done)
			}()

			backoff := iox.Backoff{}
		drain:
			for {
				if outstanding := added.Load() - taken; outstanding > maxOutstanding {
					maxOutstanding = outstanding
				}
				if _, ok := q.TryTake(); ok {
					taken++
					backoff.Reset()
					continue
				}
				select {
				case <-done:
					if taken == added.Load() {
						break drain
					}
				default:
				}
				backoff.Wait()
			}
			stop.Store(true)
			sampling.Wait()

			if maxOutstanding > capacity {
				t.Fatalf("outstanding adds: got %d, want <= %d", maxOutstanding, capacity)
			}
			if n := lenViolation.Load(); n != 0 {
				t.Fatalf("Len: got %d, want <= %d", n, capacity)
			}
			if added.Load() < capacity {
				t.Fatalf("successful adds: got %d, want >= %d", added.Load(), capacity)
			}
			if taken != added.Load() {
				t.Fatalf("taken: got %d, want %d", taken, added.Load())
			}
		})
	}
}

// =============================================================================
// FIFO Ordering
// =============================================================================

// TestFIFOSingleProducer verifies a lone producer's items arrive in order
// while a consumer races it, using ticket-lock reservations.
func TestFIFOSingleProducer(t *testing.T) {
	q := boundq.MustBuild[int](boundq.New(16).Guard(boundq.Fair))
	next := 0
	tt := &transferTest{t: t, numP: 1, numC: 1, itemsPerProd: 50000, timeout: 20 * time.Second,
		onTake: func(v int) {
			if v != next {
				t.Errorf("FIFO violation: got %d, want %d", v, next)
			}
			next = v + 1
		},
	}
	tt.run(q)
}

// TestFIFOPerProducer verifies each producer's items keep their relative
// order when several producers share one queue.
func TestFIFOPerProducer(t *testing.T) {
	const numP = 4
	for _, kind := range boundq.LockKinds {
		t.Run(kind.String(), func(t *testing.T) {
			q := boundq.MustBuild[int](boundq.New(32).Guard(kind))
			last := make([]int, numP)
			for i := range last {
				last[i] = -1
			}
			tt := &transferTest{t: t, numP: numP, numC: 1, itemsPerProd: 5000, timeout: 20 * time.Second,
				onTake: func(v int) {
					id, seq := v/100000, v%100000
					if id < 0 || id >= numP {
						return
					}
					if seq <= last[id] {
						t.Errorf("producer %d: FIFO violation: %d after %d", id, seq, last[id])
					}
					last[id] = seq
				},
			}
			tt.run(q)
		})
	}
}

// =============================================================================
// Wrap-Around Under Contention
// =============================================================================

// TestProgressTimed runs producers and consumers for a fixed time and checks
// that every successful add was eventually taken.
func TestProgressTimed(t *testing.T) {
	if boundq.RaceEnabled {
		t.Skip("skip: progress test hands items between goroutines")
	}

	q := boundq.MustBuild[int](boundq.New(8).Small())
	var added, taken atomix.Int64
	var stop atomix.Bool
	var wg sync.WaitGroup

	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; !stop.Load(); i++ {
				if q.TryAdd(i) {
					added.Add(1)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if _, ok := q.TryTake(); ok {
					taken.Add(1)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	stop.Store(true)
	wg.Wait()

	for {
		if _, ok := q.TryTake(); !ok {
			break
		}
		taken.Add(1)
	}
	if added.Load() == 0 {
		t.Fatal("no progress: zero successful adds")
	}
	if taken.Load() != added.Load() {
		t.Fatalf("taken: got %d, want %d", taken.Load(), added.Load())
	}
}
