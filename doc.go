// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package boundq provides a bounded multi-producer multi-consumer queue and
// the family of spin locks it can use for cursor reservation.
//
// # Quick Start
//
// Direct constructor:
//
//	q, err := boundq.NewBounded[Event](1000, false)
//
// Builder API:
//
//	q, err := boundq.Build[Event](boundq.New(1000))                          // lock-free reservations
//	q, err := boundq.Build[Event](boundq.New(1000).Guard(boundq.Fair))       // ticket-lock reservations
//	q, err := boundq.Build[Event](boundq.New(1000).Small())                  // smaller ring
//
// Capacity is exact: a queue built for 1000 items accepts exactly 1000.
// Construction fails with [ErrCapacity] for a negative capacity or one above
// [MaxCapacity] (2^30). A capacity of zero is valid and always full.
//
// # Basic Usage
//
//	if !q.TryAdd(ev) {
//	    // Queue is full - drop, retry, or push back
//	}
//
//	ev, ok := q.TryTake()
//	if !ok {
//	    // Queue is empty - try again later
//	}
//
// The Enqueue/Dequeue pair reports the same conditions as [ErrWouldBlock]:
//
//	backoff := iox.Backoff{}
//	for q.Enqueue(&ev) != nil {
//	    backoff.Wait()
//	}
//
// # Algorithm
//
// The queue keeps two wrapping int32 cursors. A producer reserves the add
// cursor only while add-take < capacity; a consumer reserves the take cursor
// only while take < add. Reservation is either a CAS retry loop (LockFree,
// the default) or a short critical section under one of the spin locks
// (Unfair, Fair, HighContention). No lock is held while the item moves.
//
// The reserved cursor selects a slot in a power-of-two ring sized
// capacity+1024 (capacity+256 with Small) rounded up. Each slot carries a
// tagged state, EMPTY, FILLING, FULL or EMPTYING, together with the lap of
// the cursor that owns it. Producer and consumer claim the slot with a CAS
// on that state word, so a producer of the next lap can never overtake a
// descheduled producer of the current one. Items are returned in the order
// in which add reservations were won.
//
// A taken slot is always cleared to the zero value, so the queue does not
// retain references to consumed items.
//
// # Spin Locks
//
// All three locks implement [Locker] (Enter, TryEnter, Exit) and
// sync.Locker. None of them parks on a kernel primitive:
//
//	UnfairSpinLock          - CAS flag, sleeps proportional to a running average of contention
//	FairSpinLock            - ticket lock, strict arrival order
//	HighContentionSpinLock  - CAS flag, tight spin then masked yield/sleep tiers
//
// Zero values are ready to use. Backoff constants live in [Tuning]; use
// [NewLocker] or [Builder.Tune] to override them. Exit on a lock that is not
// held panics.
//
// # Unsupported Operations
//
// Enumerating or copying the contents needs every producer and consumer to
// be quiescent. [Bounded.Snapshot] and [Bounded.CopyTo] therefore always
// return [ErrUnsupported] rather than a possibly inconsistent view, and
// ranging over [Bounded.All] panics with it.
//
// # Blocking and Cancellation
//
// TryAdd and TryTake never wait for the queue to change state. They may
// spin briefly on a slot whose previous occupant is still being moved, and
// Enter may spin for as long as the lock is held. There is no cancellation;
// callers needing timeouts wrap the calls themselves.
//
// # Race Detection
//
// The payload of a slot is a plain field ordered by acquire-release
// operations on the slot state word. Go's race detector cannot observe that
// happens-before edge, so stress tests that hand items between goroutines
// are skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause loops,
// and [code.hybscloud.com/iox] for semantic errors and sleep backoff.
package boundq
