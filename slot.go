// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Slot tags. The low tagBits of a slot state hold the tag, the remaining
// bits hold the lap of the cursor that owns the slot.
const (
	slotEmpty    uint64 = iota // Waiting for the producer of this lap
	slotFull                   // Holds an item for the consumer of this lap
	slotFilling                // Producer is writing the item
	slotEmptying               // Consumer is reading the item

	tagBits = 2
	tagMask = 1<<tagBits - 1
)

// slot is one cell of the ring. It hands a single item from one producer to
// one consumer per lap, forever:
//
//	(lap, EMPTY) → (lap, FILLING) → (lap, FULL) → (lap, EMPTYING) → (lap+1, EMPTY)
//
// Cursor reservation guarantees at most one producer and one consumer per
// lap. The lap in the state keeps a producer of a later lap from filling the
// slot before the producer of the current lap, even when the ring wraps
// while that producer is descheduled.
type slot[T any] struct {
	state atomix.Uint64 // lap<<tagBits | tag
	item  T
	_     padShort // Pad to cache line
}

// fill stores item for the consumer of the same lap.
func (s *slot[T]) fill(item T, lap uint64, t *Tuning) {
	s.acquire(lap<<tagBits|slotEmpty, lap<<tagBits|slotFilling, slotEmptying, t)
	s.item = item
	s.state.StoreRelease(lap<<tagBits | slotFull)
}

// take removes the item of lap and hands the slot to the producer of next.
func (s *slot[T]) take(lap, next uint64, t *Tuning) T {
	s.acquire(lap<<tagBits|slotFull, lap<<tagBits|slotEmptying, slotFilling, t)
	item := s.item
	var zero T
	s.item = zero
	s.state.StoreRelease(next<<tagBits | slotEmpty)
	return item
}

// acquire moves the slot from state from to state to. When the opposite
// side is observed mid-transfer the CAS is retried once straight away;
// otherwise it pauses for SlotSpins rounds and then falls back to sleeping.
func (s *slot[T]) acquire(from, to, opposite uint64, t *Tuning) {
	sw := spin.Wait{}
	backoff := iox.Backoff{}
	for i := 0; ; i++ {
		if s.state.CompareAndSwapAcqRel(from, to) {
			return
		}
		if s.state.LoadAcquire()&tagMask == opposite && s.state.CompareAndSwapAcqRel(from, to) {
			return
		}
		if i < t.SlotSpins && t.Procs > 1 {
			sw.Once()
			continue
		}
		backoff.Wait()
	}
}
