// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package boundq

import (
	"runtime"
	"sync"
	"time"
)

// Tuning holds the backoff knobs used by the spin locks and the queue slots.
//
// The values are tuning defaults, not contracts. A zero field falls back to
// the corresponding field of [DefaultTuning].
type Tuning struct {
	// UnfairWaitFactor scales the running average of failed acquisition
	// rounds into a sleep length for [UnfairSpinLock].
	UnfairWaitFactor int32
	// UnfairInverseWeight is the divisor applied when folding a new sample
	// into the running average (higher means slower adaptation).
	UnfairInverseWeight int32
	// UnfairSleepUnit is the duration of one unit of unfair-lock sleep.
	UnfairSleepUnit time.Duration

	// FairSleepUnit is the duration of one unit of fair-lock sleep.
	FairSleepUnit time.Duration
	// FairMaxSleep caps a single fair-lock sleep.
	FairMaxSleep time.Duration

	// SpinIterations is the length of the tight CAS phase of
	// [HighContentionSpinLock].
	SpinIterations int
	// YieldMask selects the iterations that yield the processor.
	// Must be one less than a power of two.
	YieldMask int
	// SleepOneMask selects the iterations that sleep for SleepTick.
	// Must be one less than a power of two.
	SleepOneMask int
	// SleepTick is the one-tick sleep of the high-contention lock.
	SleepTick time.Duration

	// SlotSpins is the number of tight retries on a busy queue slot before
	// falling back to sleep backoff.
	SlotSpins int

	// Procs is the number of processors to tune for. Zero means the
	// process-wide value, see [Procs].
	Procs int
}

// DefaultTuning is the tuning used by zero-value locks and by queues built
// without [Builder.Tune].
var DefaultTuning = Tuning{
	UnfairWaitFactor:    8,
	UnfairInverseWeight: 8,
	UnfairSleepUnit:     time.Microsecond,
	FairSleepUnit:       time.Microsecond,
	FairMaxSleep:        time.Millisecond,
	SpinIterations:      64,
	YieldMask:           15,
	SleepOneMask:        7,
	SleepTick:           time.Millisecond,
	SlotSpins:           16,
}

// procs is read once on first use. GOMAXPROCS changes after that point are
// not observed; the value only decides whether tight spinning is worthwhile.
var procs = sync.OnceValue(func() int {
	return runtime.GOMAXPROCS(0)
})

// Procs returns the process-wide processor count used when
// [Tuning.Procs] is zero.
func Procs() int {
	return procs()
}

// resolve returns t with zero fields replaced by defaults.
func (t Tuning) resolve() Tuning {
	d := DefaultTuning
	if t.UnfairWaitFactor > 0 {
		d.UnfairWaitFactor = t.UnfairWaitFactor
	}
	if t.UnfairInverseWeight > 0 {
		d.UnfairInverseWeight = t.UnfairInverseWeight
	}
	if t.UnfairSleepUnit > 0 {
		d.UnfairSleepUnit = t.UnfairSleepUnit
	}
	if t.FairSleepUnit > 0 {
		d.FairSleepUnit = t.FairSleepUnit
	}
	if t.FairMaxSleep > 0 {
		d.FairMaxSleep = t.FairMaxSleep
	}
	if t.SpinIterations > 0 {
		d.SpinIterations = t.SpinIterations
	}
	if isPow2Minus1(t.YieldMask) {
		d.YieldMask = t.YieldMask
	}
	if isPow2Minus1(t.SleepOneMask) {
		d.SleepOneMask = t.SleepOneMask
	}
	if t.SleepTick > 0 {
		d.SleepTick = t.SleepTick
	}
	if t.SlotSpins > 0 {
		d.SlotSpins = t.SlotSpins
	}
	d.Procs = t.Procs
	if d.Procs <= 0 {
		d.Procs = Procs()
	}
	return d
}

// tuningOf returns the resolved tuning behind p, or the defaults when p is nil.
func tuningOf(p *Tuning) *Tuning {
	if p != nil {
		return p
	}
	return defaultResolved()
}

var defaultResolved = sync.OnceValue(func() *Tuning {
	t := DefaultTuning.resolve()
	return &t
})

func isPow2Minus1(m int) bool {
	return m > 0 && (m+1)&m == 0
}
