// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"runtime"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// HighContentionSpinLock is a single-flag spin lock with tiered backoff.
//
// Enter first retries in a tight pause loop for [Tuning.SpinIterations]
// rounds, which keeps latency low under light contention. After that each
// round either yields the processor, sleeps for one [Tuning.SleepTick], or
// pauses, selected by masking the round counter with [Tuning.YieldMask] and
// [Tuning.SleepOneMask]. On a single processor the tight phase is skipped.
//
// The zero value is an unlocked lock using [DefaultTuning].
type HighContentionSpinLock struct {
	held   atomix.Int32
	tuning *Tuning
}

// NewHighContentionSpinLock creates an unlocked HighContentionSpinLock
// using [DefaultTuning].
func NewHighContentionSpinLock() *HighContentionSpinLock {
	return &HighContentionSpinLock{}
}

// Enter acquires the lock.
func (l *HighContentionSpinLock) Enter() {
	if l.held.CompareAndSwapAcqRel(0, 1) {
		return
	}

	t := tuningOf(l.tuning)
	sw := spin.Wait{}
	if t.Procs > 1 {
		for range t.SpinIterations {
			sw.Once()
			if l.tryAcquire() {
				return
			}
		}
	}

	for i := 1; !l.tryAcquire(); i++ {
		switch {
		case i&t.YieldMask == 0:
			runtime.Gosched()
		case i&t.SleepOneMask == 0:
			time.Sleep(t.SleepTick)
		default:
			sw.Once()
		}
	}
}

// tryAcquire is a test-and-test-and-set attempt.
func (l *HighContentionSpinLock) tryAcquire() bool {
	return l.held.LoadAcquire() == 0 && l.held.CompareAndSwapAcqRel(0, 1)
}

// TryEnter acquires the lock if it is free.
func (l *HighContentionSpinLock) TryEnter() bool {
	return l.held.CompareAndSwapAcqRel(0, 1)
}

// Exit releases the lock.
// Panics if the lock is not held.
func (l *HighContentionSpinLock) Exit() {
	if !l.held.CompareAndSwapAcqRel(1, 0) {
		panic("boundq: Exit of unlocked HighContentionSpinLock")
	}
}

// Lock is Enter, so HighContentionSpinLock satisfies sync.Locker.
func (l *HighContentionSpinLock) Lock() { l.Enter() }

// Unlock is Exit, so HighContentionSpinLock satisfies sync.Locker.
func (l *HighContentionSpinLock) Unlock() { l.Exit() }
