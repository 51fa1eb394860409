// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"iter"
	"math/bits"

	"code.hybscloud.com/atomix"
)

const (
	// MaxCapacity is the largest accepted capacity. The slot count for it
	// is 2^31, the largest power of two a wrapping int32 cursor can index.
	MaxCapacity = 1 << 30

	headroom      = 1024 // Slots beyond capacity, default layout
	headroomSmall = 256  // Slots beyond capacity, Small layout
)

// Bounded is a fixed-capacity multi-producer multi-consumer FIFO queue.
//
// Capacity accounting is done on two wrapping int32 cursors: TryAdd claims
// the add cursor, TryTake claims the take cursor, and neither ever holds a
// lock while an item is copied. The claimed cursor selects a slot by masking;
// the item is then handed over through the slot's own tagged state, so the
// only shared synchronization on the payload path is per slot.
//
// The ring has more slots than capacity (see [Builder.Small]), which keeps
// producers of the next lap away from slots that are still being drained.
//
// Items are taken in the order in which add reservations were won, which is
// not necessarily the order in which TryAdd was called.
//
// Memory: roundToPow2(capacity + 1024) slots, roundToPow2(capacity + 256) with Small.
type Bounded[T any] struct {
	_        pad
	add      atomix.Int32 // Add cursor
	_        pad
	take     atomix.Int32 // Take cursor
	_        pad
	adder    reserver
	taker    reserver
	buffer   []slot[T]
	capacity int32
	mask     uint32 // size - 1
	size     uint32
	shift    uint32 // log2(size)
	tuning   *Tuning
}

// NewBounded creates a lock-free Bounded queue for capacity items.
// The small flag selects the smaller ring layout, see [Builder.Small].
//
// Returns an error wrapping [ErrCapacity] if capacity is negative or
// exceeds [MaxCapacity].
func NewBounded[T any](capacity int, small bool) (*Bounded[T], error) {
	b := New(capacity)
	if small {
		b.Small()
	}
	return Build[T](b)
}

func newBounded[T any](opts Options) (*Bounded[T], error) {
	if opts.capacity < 0 || opts.capacity > MaxCapacity {
		return nil, capacityError(opts.capacity)
	}

	extra := uint64(headroom)
	if opts.small {
		extra = headroomSmall
	}
	n := roundToPow2(uint64(opts.capacity) + extra)

	t := opts.tuning.resolve()
	return &Bounded[T]{
		adder:    newReserver(opts.guard, &t),
		taker:    newReserver(opts.guard, &t),
		buffer:   make([]slot[T], n),
		capacity: int32(opts.capacity),
		mask:     uint32(n - 1),
		size:     uint32(n),
		shift:    uint32(bits.TrailingZeros64(n)),
		tuning:   &t,
	}, nil
}

// TryAdd adds item to the queue.
// Returns false without side effects if the queue is observed full.
func (q *Bounded[T]) TryAdd(item T) bool {
	cur, ok := q.adder.reserve(&q.add, &q.take, q.capacity)
	if !ok {
		return false
	}
	pos := uint32(cur)
	q.buffer[pos&q.mask].fill(item, q.lap(pos), q.tuning)
	return true
}

// TryTake removes and returns the item with the oldest add reservation.
// Returns (zero-value, false) if the queue is observed empty.
func (q *Bounded[T]) TryTake() (T, bool) {
	cur, ok := q.taker.reserve(&q.take, &q.add, 0)
	if !ok {
		var zero T
		return zero, false
	}
	pos := uint32(cur)
	return q.buffer[pos&q.mask].take(q.lap(pos), q.lap(pos+q.size), q.tuning), true
}

// lap returns the generation of cursor position pos. It wraps together with
// the cursor, so pos+size always maps to the lap after pos.
func (q *Bounded[T]) lap(pos uint32) uint64 {
	return uint64(pos >> q.shift)
}

// Enqueue adds a copy of *elem to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *Bounded[T]) Enqueue(elem *T) error {
	if !q.TryAdd(*elem) {
		return ErrWouldBlock
	}
	return nil
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Bounded[T]) Dequeue() (T, error) {
	elem, ok := q.TryTake()
	if !ok {
		return elem, ErrWouldBlock
	}
	return elem, nil
}

// Len returns max(0, add cursor - take cursor). The value may be stale by
// the time it is returned and must not drive correctness decisions.
func (q *Bounded[T]) Len() int {
	n := q.add.LoadAcquire() - q.take.LoadAcquire()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return int(q.capacity)
}

// Snapshot always returns ErrUnsupported. A consistent copy of the contents
// would need every producer and consumer to be quiescent, which the queue
// cannot guarantee. For the same reason [Bounded.All] panics when ranged.
func (q *Bounded[T]) Snapshot() ([]T, error) {
	return nil, ErrUnsupported
}

// CopyTo always returns (0, ErrUnsupported), see [Bounded.Snapshot].
func (q *Bounded[T]) CopyTo(dst []T) (int, error) {
	return 0, ErrUnsupported
}

// All returns an iterator over the queue contents. Ranging over it panics
// with [ErrUnsupported], see [Bounded.Snapshot]. Drain with TryTake instead.
func (q *Bounded[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		panic(ErrUnsupported)
	}
}
