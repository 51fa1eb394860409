// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import "golang.org/x/sys/cpu"

// LockKind selects how a [Bounded] queue serializes cursor reservations,
// and which lock [NewLocker] creates.
type LockKind uint8

const (
	// LockFree reserves cursors with a compare-and-swap retry loop.
	LockFree LockKind = iota
	// Unfair guards each cursor with an [UnfairSpinLock].
	Unfair
	// Fair guards each cursor with a [FairSpinLock].
	Fair
	// HighContention guards each cursor with a [HighContentionSpinLock].
	HighContention
)

// String returns the name of the lock kind.
func (k LockKind) String() string {
	switch k {
	case LockFree:
		return "lock-free"
	case Unfair:
		return "unfair"
	case Fair:
		return "fair"
	case HighContention:
		return "high-contention"
	default:
		return "unknown"
	}
}

// LockKinds lists every LockKind in declaration order.
var LockKinds = []LockKind{LockFree, Unfair, Fair, HighContention}

// Options configures queue creation.
type Options struct {
	capacity int
	small    bool     // Smaller ring headroom
	guard    LockKind // Cursor reservation strategy
	tuning   Tuning
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Lock-free reservations (default)
//	q, err := boundq.Build[Event](boundq.New(4096))
//
//	// Cursor reservations ordered by a ticket lock
//	q, err := boundq.Build[Event](boundq.New(4096).Guard(boundq.Fair))
//
//	// Smaller ring, custom backoff
//	q := boundq.MustBuild[*Request](boundq.New(128).Small().Tune(boundq.Tuning{SlotSpins: 64}))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity is the exact logical bound; it is not rounded. The range is
// checked by Build, not here.
func New(capacity int) *Builder {
	return &Builder{opts: Options{capacity: capacity}}
}

// Small selects a smaller ring headroom (256 slots instead of 1024).
//
// Trade-off: less memory for short queues, more chance that a producer
// waits on a slot still being drained when the ring wraps under very high
// concurrency. Behavior is otherwise identical.
func (b *Builder) Small() *Builder {
	b.opts.small = true
	return b
}

// Guard selects the cursor reservation strategy. The default is LockFree.
// Every strategy enforces the same bound and FIFO order.
func (b *Builder) Guard(kind LockKind) *Builder {
	b.opts.guard = kind
	return b
}

// Tune overrides backoff constants. Zero fields keep their defaults.
func (b *Builder) Tune(t Tuning) *Builder {
	b.opts.tuning = t
	return b
}

// Build creates a Bounded[T] from the builder configuration.
//
// Returns an error wrapping [ErrCapacity] if the capacity is negative or
// exceeds [MaxCapacity].
func Build[T any](b *Builder) (*Bounded[T], error) {
	return newBounded[T](b.opts)
}

// MustBuild is like Build but panics on error.
func MustBuild[T any](b *Builder) *Bounded[T] {
	q, err := Build[T](b)
	if err != nil {
		panic(err)
	}
	return q
}

// NewLocker creates a standalone lock of the given kind using t.
// Zero fields of t keep their defaults.
// Panics if kind is LockFree, which has no lock.
func NewLocker(kind LockKind, t Tuning) Locker {
	resolved := t.resolve()
	return newLocker(kind, &resolved)
}

func newLocker(kind LockKind, t *Tuning) Locker {
	switch kind {
	case Unfair:
		return &UnfairSpinLock{tuning: t}
	case Fair:
		return &FairSpinLock{tuning: t}
	case HighContention:
		return &HighContentionSpinLock{tuning: t}
	default:
		panic("boundq: no lock for " + kind.String())
	}
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad = cpu.CacheLinePad

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
