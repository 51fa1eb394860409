// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"runtime"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/valyala/fastrand"
)

// UnfairSpinLock is a single-flag spin lock with adaptive backoff.
//
// A contended Enter sleeps in proportion to a running average of how many
// rounds recent contended acquisitions needed, so the lock tunes itself to
// the observed contention. There is no ordering between waiters: a goroutine
// can lose the race indefinitely under sustained contention.
//
// The zero value is an unlocked lock using [DefaultTuning].
type UnfairSpinLock struct {
	held   atomix.Int32
	avg    atomix.Int32 // Running average of contended rounds
	tuning *Tuning
}

// NewUnfairSpinLock creates an unlocked UnfairSpinLock using [DefaultTuning].
func NewUnfairSpinLock() *UnfairSpinLock {
	return &UnfairSpinLock{}
}

// Enter acquires the lock.
func (l *UnfairSpinLock) Enter() {
	if l.held.CompareAndSwapAcqRel(0, 1) {
		return
	}

	t := tuningOf(l.tuning)
	var rounds int32
	for !l.held.CompareAndSwapAcqRel(0, 1) {
		rounds++
		l.backoff(t, l.avg.LoadAcquire())
	}

	avg := l.avg.LoadAcquire()
	l.avg.StoreRelease(avg + (rounds-avg)/t.UnfairInverseWeight)
}

func (l *UnfairSpinLock) backoff(t *Tuning, avg int32) {
	units := int64(avg) * int64(t.UnfairWaitFactor)
	if units <= 0 {
		runtime.Gosched()
		return
	}
	// Jitter keeps sleepers that observed the same average from waking in lockstep.
	jitter := time.Duration(fastrand.Uint32n(uint32(t.UnfairSleepUnit)))
	time.Sleep(time.Duration(units)*t.UnfairSleepUnit + jitter)
}

// TryEnter acquires the lock if it is free.
func (l *UnfairSpinLock) TryEnter() bool {
	return l.held.CompareAndSwapAcqRel(0, 1)
}

// Exit releases the lock.
// Panics if the lock is not held.
func (l *UnfairSpinLock) Exit() {
	if !l.held.CompareAndSwapAcqRel(1, 0) {
		panic("boundq: Exit of unlocked UnfairSpinLock")
	}
}

// Lock is Enter, so UnfairSpinLock satisfies sync.Locker.
func (l *UnfairSpinLock) Lock() { l.Enter() }

// Unlock is Exit, so UnfairSpinLock satisfies sync.Locker.
func (l *UnfairSpinLock) Unlock() { l.Exit() }
