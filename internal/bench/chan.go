// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench

// ChanQueue adapts a buffered channel to Queue. It is the baseline the
// benchmark driver compares against.
type ChanQueue[T any] struct {
	ch chan T
}

// NewChanQueue creates a ChanQueue holding up to capacity items.
func NewChanQueue[T any](capacity int) *ChanQueue[T] {
	return &ChanQueue[T]{ch: make(chan T, capacity)}
}

// TryAdd sends item without blocking.
func (q *ChanQueue[T]) TryAdd(item T) bool {
	select {
	case q.ch <- item:
		return true
	default:
		return false
	}
}

// TryTake receives an item without blocking.
func (q *ChanQueue[T]) TryTake() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of buffered items.
func (q *ChanQueue[T]) Len() int { return len(q.ch) }

// Cap returns the channel capacity.
func (q *ChanQueue[T]) Cap() int { return cap(q.ch) }
