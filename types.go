// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import "sync"

// Queue is the combined producer-consumer interface for a bounded FIFO queue.
//
// Every operation is non-blocking in the sense that it never parks the
// calling goroutine: a full or empty queue is reported immediately.
// Internally an operation may spin briefly while another goroutine finishes
// moving an item in or out of the same slot.
//
// Example:
//
//	q, err := boundq.NewBounded[int](1024, false)
//	if err != nil {
//	    return err
//	}
//
//	if !q.TryAdd(42) {
//	    // Handle full queue
//	}
//
//	if v, ok := q.TryTake(); ok {
//	    fmt.Println(v)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Len returns an instantaneous, possibly stale, item count.
	// It is meant for diagnostics only.
	Len() int

	// Cap returns the logical capacity fixed at construction.
	Cap() int
}

// Producer is the interface for adding elements.
type Producer[T any] interface {
	// TryAdd adds item to the queue.
	// Returns false without side effects if the queue is observed full.
	TryAdd(item T) bool

	// Enqueue adds a copy of *elem to the queue.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for removing elements.
//
// The slot an item is taken from is cleared so the queue never retains a
// reference to a consumed value.
type Consumer[T any] interface {
	// TryTake removes and returns the oldest reserved item.
	// Returns (zero-value, false) if the queue is observed empty.
	TryTake() (T, bool)

	// Dequeue removes and returns the oldest reserved item.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// Locker is the interface shared by the spin-lock family.
//
// None of the locks ever park on a kernel primitive; all waiting is local
// spinning with escalating backoff. Enter does not return until the lock is
// held, and there is no timeout or cancellation.
//
// Calling Exit on a lock the caller does not hold is a programming error.
type Locker interface {
	// Enter acquires the lock, waiting as long as necessary.
	Enter()

	// TryEnter acquires the lock if it is free and reports whether it did.
	TryEnter() bool

	// Exit releases the lock.
	Exit()
}

var (
	_ Queue[int] = (*Bounded[int])(nil)

	_ Locker      = (*UnfairSpinLock)(nil)
	_ Locker      = (*FairSpinLock)(nil)
	_ Locker      = (*HighContentionSpinLock)(nil)
	_ sync.Locker = (*UnfairSpinLock)(nil)
	_ sync.Locker = (*FairSpinLock)(nil)
	_ sync.Locker = (*HighContentionSpinLock)(nil)
)
