// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"time"

	"code.hybscloud.com/atomix"
)

// SequenceBarrier is one consumer's view of what it may safely read.
//
// It combines the producer cursor, the upstream sequences this consumer
// must not overtake, the shared wait strategy, and an alerted flag used
// to break out of waits during shutdown. Multi-producer barriers also
// hold the availability map so they can resolve the contiguous published
// prefix; avail is nil in single-producer mode.
type SequenceBarrier struct {
	cursor     *Sequence
	dependents []*Sequence
	wait       WaitStrategy
	avail      *availability
	alerted    atomix.Bool
}

// WaitFor blocks until sequence is safely readable and returns the
// highest sequence the consumer may process, which may exceed the
// request. Returns AlertedSignal if the barrier is alerted while waiting.
//
// The resolution is two-step: the wait strategy reports how far the
// cursor (or the upstream consumers) have advanced, then in
// multi-producer mode the availability map narrows that to the highest
// contiguously published sequence, which may be sequence-1 when
// producers are committing out of order.
func (b *SequenceBarrier) WaitFor(sequence int64) int64 {
	available := b.wait.WaitFor(sequence, b.cursor, b.dependents, &b.alerted)
	if available < firstSequenceValue {
		return available
	}
	if b.avail != nil {
		return b.avail.highestPublished(sequence, available)
	}
	return available
}

// WaitForTimeout is WaitFor with a deadline; returns TimeoutSignal once
// timeout elapses with the request still not visible.
func (b *SequenceBarrier) WaitForTimeout(sequence int64, timeout time.Duration) int64 {
	available := b.wait.WaitForTimeout(sequence, b.cursor, b.dependents, &b.alerted, timeout)
	if available < firstSequenceValue {
		return available
	}
	if b.avail != nil {
		return b.avail.highestPublished(sequence, available)
	}
	return available
}

// Cursor returns the producer cursor's current value.
func (b *SequenceBarrier) Cursor() int64 {
	return b.cursor.Load()
}

// Alerted reports whether the barrier has been alerted.
func (b *SequenceBarrier) Alerted() bool {
	return b.alerted.LoadAcquire()
}

// SetAlerted sets or clears the alerted flag. Setting it causes the
// current (or next) WaitFor to return AlertedSignal; for the blocking
// strategy the caller must follow with SignalAllWhenBlocking, because a
// parked waiter cannot observe the flag until woken.
func (b *SequenceBarrier) SetAlerted(alert bool) {
	b.alerted.StoreRelease(alert)
}

// SignalAllWhenBlocking wakes waiters parked on the blocking strategy.
func (b *SequenceBarrier) SignalAllWhenBlocking() {
	b.wait.SignalAllWhenBlocking()
}
