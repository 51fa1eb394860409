// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"math"
	"runtime"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// FairSpinLock is a ticket lock: goroutines acquire it strictly in the order
// in which they called Enter.
//
// Enter draws a ticket from next and waits until owner reaches it; Exit
// advances owner. A waiter sleeps between polls for a time derived from its
// distance to the front of the line and from how quickly that distance has
// been shrinking, and pauses without sleeping when it is next in line.
//
// Fairness costs more per acquisition than [UnfairSpinLock] and
// [HighContentionSpinLock].
//
// The zero value is an unlocked lock using [DefaultTuning].
type FairSpinLock struct {
	_      pad
	next   atomix.Int32 // Next ticket to hand out
	_      pad
	owner  atomix.Int32 // Ticket currently holding the lock
	_      pad
	tuning *Tuning
}

// NewFairSpinLock creates an unlocked FairSpinLock using [DefaultTuning].
func NewFairSpinLock() *FairSpinLock {
	return &FairSpinLock{}
}

// Enter acquires the lock after every earlier caller of Enter has
// acquired and released it.
func (l *FairSpinLock) Enter() {
	self := l.next.AddAcqRel(1) - 1
	if l.owner.LoadAcquire() == self {
		return
	}

	t := tuningOf(l.tuning)
	sw := spin.Wait{}
	prevDiff := int64(math.MaxInt32)
	maxUnits := max(int64(t.FairMaxSleep/t.FairSleepUnit), 1)
	var sleep int64
	for {
		diff := int64(self - l.owner.LoadAcquire())
		if diff == 0 {
			return
		}

		// owner only moves forward, so improvement >= 1.
		improvement := prevDiff - diff + 1
		prevDiff = diff
		sleep = min(sleep*diff/(improvement*8)+diff, maxUnits)

		if diff == 1 {
			if t.Procs > 1 {
				sw.Once()
			} else {
				runtime.Gosched()
			}
			continue
		}
		time.Sleep(time.Duration(sleep) * t.FairSleepUnit)
	}
}

// TryEnter acquires the lock only if nobody holds or waits for it.
func (l *FairSpinLock) TryEnter() bool {
	owner := l.owner.LoadAcquire()
	return l.next.CompareAndSwapAcqRel(owner, owner+1)
}

// Exit releases the lock to the next ticket holder.
// Panics if the lock is not held.
func (l *FairSpinLock) Exit() {
	owner := l.owner.LoadAcquire()
	if owner == l.next.LoadAcquire() {
		panic("boundq: Exit of unlocked FairSpinLock")
	}
	l.owner.StoreRelease(owner + 1)
}

// Lock is Enter, so FairSpinLock satisfies sync.Locker.
func (l *FairSpinLock) Lock() { l.Enter() }

// Unlock is Exit, so FairSpinLock satisfies sync.Locker.
func (l *FairSpinLock) Unlock() { l.Exit() }
