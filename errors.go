// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue: the queue is full (backpressure)
// For Dequeue: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller decides
// whether to retry, drop, or push back on its own producers.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrCapacity is returned by constructors when the requested capacity is
// negative or larger than [MaxCapacity]. The capacity is never clamped.
var ErrCapacity = errors.New("boundq: capacity out of range")

// ErrUnsupported is returned by operations that would need every producer
// and consumer to be quiescent, such as [Bounded.Snapshot].
//
// It wraps [errors.ErrUnsupported].
var ErrUnsupported = fmt.Errorf("boundq: operation requires a quiescent queue: %w", errors.ErrUnsupported)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

func capacityError(capacity int) error {
	return fmt.Errorf("%w: %d not in [0, %d]", ErrCapacity, capacity, MaxCapacity)
}
