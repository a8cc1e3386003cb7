// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// WaitStrategyOption selects how a consumer blocks until a sequence
// becomes visible.
type WaitStrategyOption int

const (
	// BusySpin spins in a tight loop. Lowest and most consistent latency;
	// saturates a core. Pin consumer goroutines to isolated cores when
	// latency jitter matters.
	BusySpin WaitStrategyOption = iota

	// Yielding spins for a fixed budget, then yields the processor on
	// every further iteration. A good compromise under moderate contention.
	Yielding

	// Sleeping backs off progressively: spin for half the budget, yield
	// for the other half, then sleep in short slices. Suits bursty
	// traffic with quiet periods when latency is not critical.
	Sleeping

	// Blocking parks on a condition variable until the publisher signals.
	// Lowest CPU, highest latency.
	Blocking
)

// NewWaitStrategy returns a fresh strategy instance for option.
// One instance is shared by the sequencer and every barrier it creates.
func NewWaitStrategy(option WaitStrategyOption) WaitStrategy {
	switch option {
	case Yielding:
		return NewYieldingStrategy()
	case Sleeping:
		return NewSleepingStrategy()
	case Blocking:
		return NewBlockingStrategy()
	default:
		return NewBusySpinStrategy()
	}
}

// WaitStrategy blocks a waiter until a requested sequence is visible.
//
// The visibility source is min(dependents) when dependents is non-empty,
// otherwise the cursor: a consumer with upstream consumers waits on them,
// the head consumer waits on the producer cursor. All variants share the
// contract; they differ only in how they burn the wait.
//
// WaitFor returns the visibility source's value, which is >= sequence on
// success, or AlertedSignal when alerted flips true. WaitForTimeout
// additionally returns TimeoutSignal once the deadline passes; the
// deadline is checked against the monotonic clock after each wait slice,
// never mid-slice.
type WaitStrategy interface {
	WaitFor(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool) int64
	WaitForTimeout(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool, timeout time.Duration) int64

	// SignalAllWhenBlocking wakes parked waiters. A no-op for every
	// variant except Blocking. Publishers call this after every publish;
	// shutdown paths call it after flipping the alerted flag.
	SignalAllWhenBlocking()
}

const (
	defaultSpinTries     = 200
	defaultSleepInterval = time.Microsecond
)

// minVisible returns the current value of the waiter's visibility source.
func minVisible(cursor *Sequence, dependents []*Sequence) int64 {
	if len(dependents) == 0 {
		return cursor.Load()
	}
	return minimumSequence(dependents)
}

// BusySpinStrategy spins on the visibility source without ever yielding
// to the scheduler. A CPU pause per iteration keeps the core's pipeline
// from speculating through the loop.
type BusySpinStrategy struct{}

// NewBusySpinStrategy returns a BusySpin wait strategy.
func NewBusySpinStrategy() *BusySpinStrategy {
	return &BusySpinStrategy{}
}

func (*BusySpinStrategy) WaitFor(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool) int64 {
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		sw.Once()
	}
}

func (*BusySpinStrategy) WaitForTimeout(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool, timeout time.Duration) int64 {
	deadline := time.Now().Add(timeout)
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		if time.Now().After(deadline) {
			return TimeoutSignal
		}
		sw.Once()
	}
}

func (*BusySpinStrategy) SignalAllWhenBlocking() {}

// YieldingStrategy spins for spinTries iterations, then calls
// runtime.Gosched on every further iteration.
type YieldingStrategy struct {
	spinTries int
}

// NewYieldingStrategy returns a Yielding wait strategy with the default
// spin budget.
func NewYieldingStrategy() *YieldingStrategy {
	return &YieldingStrategy{spinTries: defaultSpinTries}
}

func (y *YieldingStrategy) WaitFor(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool) int64 {
	counter := y.spinTries
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		counter = applyYield(counter, &sw)
	}
}

func (y *YieldingStrategy) WaitForTimeout(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool, timeout time.Duration) int64 {
	deadline := time.Now().Add(timeout)
	counter := y.spinTries
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		counter = applyYield(counter, &sw)
		if time.Now().After(deadline) {
			return TimeoutSignal
		}
	}
}

func (*YieldingStrategy) SignalAllWhenBlocking() {}

func applyYield(counter int, sw *spin.Wait) int {
	if counter > 0 {
		sw.Once()
		return counter - 1
	}
	runtime.Gosched()
	return counter
}

// SleepingStrategy backs off in three phases: spin for the first half of
// the budget, yield for the second half, then sleep sleepInterval per
// iteration until the sequence is visible.
type SleepingStrategy struct {
	spinTries     int
	sleepInterval time.Duration
}

// NewSleepingStrategy returns a Sleeping wait strategy with the default
// budget and a 1 microsecond sleep slice.
func NewSleepingStrategy() *SleepingStrategy {
	return &SleepingStrategy{
		spinTries:     defaultSpinTries,
		sleepInterval: defaultSleepInterval,
	}
}

func (s *SleepingStrategy) WaitFor(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool) int64 {
	counter := s.spinTries
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		counter = s.applyBackoff(counter, &sw)
	}
}

func (s *SleepingStrategy) WaitForTimeout(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool, timeout time.Duration) int64 {
	deadline := time.Now().Add(timeout)
	counter := s.spinTries
	sw := spin.Wait{}
	for {
		if available := minVisible(cursor, dependents); available >= sequence {
			return available
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		counter = s.applyBackoff(counter, &sw)
		if time.Now().After(deadline) {
			return TimeoutSignal
		}
	}
}

func (*SleepingStrategy) SignalAllWhenBlocking() {}

func (s *SleepingStrategy) applyBackoff(counter int, sw *spin.Wait) int {
	switch {
	case counter > s.spinTries/2:
		sw.Once()
		return counter - 1
	case counter > 0:
		runtime.Gosched()
		return counter - 1
	default:
		time.Sleep(s.sleepInterval)
		return counter
	}
}

// BlockingStrategy parks waiters on a condition variable until the
// publisher advances the cursor.
//
// The wait is two-phase. Phase one parks on the condvar until the cursor
// itself reaches the requested sequence; this is the only phase that
// needs a wake signal, so publishers must call SignalAllWhenBlocking
// after every publish and shutdown paths must call it after setting the
// alerted flag, or a waiter that parked just before the store misses the
// wake. Phase two busy-waits on the dependent sequences, which advance
// quickly once the cursor has.
type BlockingStrategy struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewBlockingStrategy returns a Blocking wait strategy.
func NewBlockingStrategy() *BlockingStrategy {
	b := &BlockingStrategy{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *BlockingStrategy) WaitFor(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool) int64 {
	available := cursor.Load()
	if available < sequence {
		b.mu.Lock()
		for {
			if available = cursor.Load(); available >= sequence {
				break
			}
			if alerted.LoadAcquire() {
				b.mu.Unlock()
				return AlertedSignal
			}
			b.cond.Wait()
		}
		b.mu.Unlock()
	}

	sw := spin.Wait{}
	for len(dependents) > 0 {
		if available = minimumSequence(dependents); available >= sequence {
			break
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		sw.Once()
	}
	return available
}

func (b *BlockingStrategy) WaitForTimeout(sequence int64, cursor *Sequence, dependents []*Sequence, alerted *atomix.Bool, timeout time.Duration) int64 {
	deadline := time.Now().Add(timeout)

	available := cursor.Load()
	if available < sequence {
		// The condvar has no timed wait; a timer wakes every waiter at the
		// deadline and each re-checks its own clock.
		timer := time.AfterFunc(timeout, b.signal)
		defer timer.Stop()

		b.mu.Lock()
		for {
			if available = cursor.Load(); available >= sequence {
				break
			}
			if alerted.LoadAcquire() {
				b.mu.Unlock()
				return AlertedSignal
			}
			if time.Now().After(deadline) {
				b.mu.Unlock()
				return TimeoutSignal
			}
			b.cond.Wait()
		}
		b.mu.Unlock()
	}

	sw := spin.Wait{}
	for len(dependents) > 0 {
		if available = minimumSequence(dependents); available >= sequence {
			break
		}
		if alerted.LoadAcquire() {
			return AlertedSignal
		}
		if time.Now().After(deadline) {
			return TimeoutSignal
		}
		sw.Once()
	}
	return available
}

// SignalAllWhenBlocking wakes every parked waiter.
func (b *BlockingStrategy) SignalAllWhenBlocking() {
	b.signal()
}

func (b *BlockingStrategy) signal() {
	b.mu.Lock()
	b.cond.Broadcast()
	b.mu.Unlock()
}
