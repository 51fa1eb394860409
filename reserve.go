// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// reserver claims cursor values for the queue.
//
// reserve claims the current value of cursor and advances it by one,
// provided other+limit-cursor > 0 under wrapping int32 arithmetic. For the
// add cursor other is the take cursor and limit is the capacity; for the
// take cursor other is the add cursor and limit is zero. It reports false
// without changing cursor when the bound does not hold.
//
// The wrapping comparison is sound because cursors never drift more than
// MaxCapacity apart, far below 2^31.
type reserver interface {
	reserve(cursor, other *atomix.Int32, limit int32) (int32, bool)
}

// casReserver verifies the bound against a snapshot and commits with CAS.
// A lost CAS publishes nothing, so there is never a reservation to undo.
type casReserver struct{}

func (casReserver) reserve(cursor, other *atomix.Int32, limit int32) (int32, bool) {
	sw := spin.Wait{}
	for {
		cur := cursor.LoadAcquire()
		if other.LoadAcquire()+limit-cur <= 0 {
			return 0, false
		}
		if cursor.CompareAndSwapAcqRel(cur, cur+1) {
			return cur, true
		}
		sw.Once()
	}
}

// lockedReserver serializes reservations on one cursor behind a spin lock.
// The bound is pre-checked without the lock so a full or empty queue never
// contends on it.
type lockedReserver struct {
	lock Locker
}

func (r lockedReserver) reserve(cursor, other *atomix.Int32, limit int32) (int32, bool) {
	if other.LoadAcquire()+limit-cursor.LoadAcquire() <= 0 {
		return 0, false
	}

	r.lock.Enter()
	cur := cursor.LoadAcquire()
	if other.LoadAcquire()+limit-cur <= 0 {
		r.lock.Exit()
		return 0, false
	}
	cursor.StoreRelease(cur + 1)
	r.lock.Exit()
	return cur, true
}

func newReserver(kind LockKind, t *Tuning) reserver {
	if kind == LockFree {
		return casReserver{}
	}
	return lockedReserver{lock: newLocker(kind, t)}
}
