// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"math/bits"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ProducerMode selects the claim strategy.
type ProducerMode int

const (
	// SingleProducer keeps the claim path free of atomics. Safe only when
	// exactly one goroutine calls Next and Publish; concurrent use
	// corrupts the reservation counter.
	SingleProducer ProducerMode = iota

	// MultiProducer serializes reservations with CAS on the cursor and
	// tracks publication per slot, so producers may commit out of order.
	MultiProducer
)

// availability is the multi-producer per-slot publication map.
//
// Entry k holds the generation of the sequence that last published slot k:
// flag = seq >> log2(n). A slot is published at sequence s iff its entry
// equals s's generation, so a consumer one full turn behind never mistakes
// the previous generation's entry for its own. All entries start at -1 so
// nothing is published before the first store.
type availability struct {
	flags []atomix.Int64
	mask  int64
	shift uint
}

func newAvailability(capacity int64) *availability {
	a := &availability{
		flags: make([]atomix.Int64, capacity),
		mask:  capacity - 1,
		shift: uint(bits.TrailingZeros64(uint64(capacity))),
	}
	for i := range a.flags {
		a.flags[i].StoreRelaxed(InitialSequenceValue)
	}
	return a
}

// set marks sequence published. The release store pairs with the acquire
// load in isSet: a consumer that observes the flag sees every slot write
// the producer made before publishing.
func (a *availability) set(sequence int64) {
	a.flags[sequence&a.mask].StoreRelease(sequence >> a.shift)
}

func (a *availability) isSet(sequence int64) bool {
	return a.flags[sequence&a.mask].LoadAcquire() == sequence>>a.shift
}

// highestPublished returns the largest s <= upperBound such that every
// sequence in [lowerBound, s] is published, or lowerBound-1 when
// lowerBound itself is not. The scan is O(distance) but the typical
// distance is 1 and it stops at the first gap; the result is never cached
// because the bound changes every call.
func (a *availability) highestPublished(lowerBound, upperBound int64) int64 {
	for s := lowerBound; s <= upperBound; s++ {
		if !a.isSet(s) {
			return s - 1
		}
	}
	return upperBound
}

// Claim-side operations of the Sequencer. Single- and multi-producer
// variants share the wrap rule: a reservation up to sequence s is allowed
// only when every gating consumer is past s - n.

// Next reserves delta consecutive sequences and returns the last.
// Blocks with a cooperative spin until the slowest gating consumer
// releases enough capacity.
func (s *Sequencer[E]) Next(delta int64) int64 {
	if delta < 1 {
		delta = 1
	}
	if s.mode == MultiProducer {
		return s.nextMulti(delta)
	}
	return s.nextSingle(delta)
}

// nextSingle advances the non-atomic reservation counter. The cached
// gating minimum avoids scanning the gating sequences on every claim;
// it is refreshed only when the wrap point passes the cache.
func (s *Sequencer[E]) nextSingle(delta int64) int64 {
	next := s.nextReservation + delta
	wrapPoint := next - s.buffer.Cap()
	if wrapPoint > s.cachedGating {
		sw := spin.Wait{}
		for {
			minGating := minimumSequence(s.gating)
			if wrapPoint <= minGating {
				s.cachedGating = minGating
				break
			}
			sw.Once()
		}
	}
	s.nextReservation = next
	return next
}

// nextMulti serializes reservations by CAS on the cursor, giving each
// producer a disjoint contiguous range. The gating cache is a Sequence
// because every producer reads and refreshes it.
func (s *Sequencer[E]) nextMulti(delta int64) int64 {
	sw := spin.Wait{}
	for {
		current := s.cursor.Load()
		next := current + delta
		wrapPoint := next - s.buffer.Cap()
		if wrapPoint > s.multiGating.Load() {
			minGating := minimumSequence(s.gating)
			if wrapPoint > minGating {
				sw.Once()
				continue
			}
			s.multiGating.Store(minGating)
		} else if s.cursor.CompareAndSet(current, next) {
			return next
		}
	}
}

// TryNext reserves delta consecutive sequences without blocking.
// Returns ErrWouldBlock when the gating consumers have not released
// enough capacity.
func (s *Sequencer[E]) TryNext(delta int64) (int64, error) {
	if delta < 1 {
		delta = 1
	}
	if s.mode == MultiProducer {
		for {
			current := s.cursor.Load()
			next := current + delta
			if next-s.buffer.Cap() > minimumSequence(s.gating) {
				return InitialSequenceValue, ErrWouldBlock
			}
			if s.cursor.CompareAndSet(current, next) {
				return next, nil
			}
		}
	}
	next := s.nextReservation + delta
	if next-s.buffer.Cap() > minimumSequence(s.gating) {
		return InitialSequenceValue, ErrWouldBlock
	}
	s.nextReservation = next
	return next, nil
}

// HasAvailableCapacity reports whether one more sequence can be claimed
// without blocking. The probe refreshes the gating cache as a side
// effect, same as the claim path would.
func (s *Sequencer[E]) HasAvailableCapacity() bool {
	if s.mode == MultiProducer {
		wrapPoint := s.cursor.Load() + 1 - s.buffer.Cap()
		if wrapPoint > s.multiGating.Load() {
			minGating := minimumSequence(s.gating)
			s.multiGating.Store(minGating)
			if wrapPoint > minGating {
				return false
			}
		}
		return true
	}
	wrapPoint := s.nextReservation + 1 - s.buffer.Cap()
	if wrapPoint > s.cachedGating {
		minGating := minimumSequence(s.gating)
		s.cachedGating = minGating
		if wrapPoint > minGating {
			return false
		}
	}
	return true
}

// Publish makes sequence visible to consumers and signals blocking
// waiters. Single-producer publication advances the cursor; reservation
// and publication share the one monotonic counter. Multi-producer
// publication sets the slot's availability flag, the cursor having
// already advanced at reservation time.
func (s *Sequencer[E]) Publish(sequence int64) {
	if s.mode == MultiProducer {
		s.avail.set(sequence)
	} else {
		s.cursor.Store(sequence)
	}
	s.wait.SignalAllWhenBlocking()
}

// PublishRange makes every sequence in [lo, hi] visible. Multi-producer
// mode sets each slot's flag individually so that highestPublished sees
// the exact contiguous prefix.
func (s *Sequencer[E]) PublishRange(lo, hi int64) {
	if s.mode == MultiProducer {
		for seq := lo; seq <= hi; seq++ {
			s.avail.set(seq)
		}
	} else {
		s.cursor.Store(hi)
	}
	s.wait.SignalAllWhenBlocking()
}

// IsAvailable reports whether sequence has been published.
func (s *Sequencer[E]) IsAvailable(sequence int64) bool {
	if s.mode == MultiProducer {
		return s.avail.isSet(sequence)
	}
	return sequence <= s.cursor.Load()
}

// HighestPublished returns the highest sequence s in
// [lowerBound, upperBound] such that every sequence up to s is published,
// or lowerBound-1 if lowerBound itself is not. Single-producer
// publication is strictly in order, so upperBound is returned unchanged.
func (s *Sequencer[E]) HighestPublished(lowerBound, upperBound int64) int64 {
	if s.mode == MultiProducer {
		return s.avail.highestPublished(lowerBound, upperBound)
	}
	return upperBound
}
