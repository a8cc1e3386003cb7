// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

// Sequencer owns the ring buffer, the cursor, the claim state, and the
// shared wait strategy. It is the wiring hub: producers claim and publish
// through it, and every consumer gets a SequenceBarrier from it.
//
// Cursor semantics depend on the producer mode. Single-producer: the
// cursor is the last published sequence. Multi-producer: the cursor is
// the highest reserved sequence and publication is tracked per slot.
type Sequencer[E any] struct {
	buffer *RingBuffer[E]
	cursor *Sequence
	wait   WaitStrategy
	mode   ProducerMode

	// Single-producer claim state. Not atomic: only the one producing
	// goroutine touches it.
	nextReservation int64
	cachedGating    int64

	// Multi-producer claim state. The gating cache is shared by all
	// producers; avail is read by consumers through their barriers.
	avail       *availability
	multiGating *Sequence

	// Terminal consumer sequences. Mutated only at wiring time, between
	// barrier construction and steady-state publication.
	gating []*Sequence
}

// NewSequencer constructs a sequencer with the given capacity, producer
// mode, and wait strategy option. Capacity must be a positive power of
// two. The factory may be nil for zero-valued slots.
func NewSequencer[E any](capacity int64, factory EventFactory[E], mode ProducerMode, wait WaitStrategyOption) (*Sequencer[E], error) {
	buffer, err := NewRingBuffer(capacity, factory)
	if err != nil {
		return nil, err
	}
	s := &Sequencer[E]{
		buffer:          buffer,
		cursor:          NewSequence(),
		wait:            NewWaitStrategy(wait),
		mode:            mode,
		nextReservation: InitialSequenceValue,
		cachedGating:    InitialSequenceValue,
	}
	if mode == MultiProducer {
		s.avail = newAvailability(capacity)
		s.multiGating = NewSequence()
	}
	return s, nil
}

// SetGatingSequences replaces the set of terminal consumer sequences that
// gate producers. Must be called once wiring is complete and before
// steady-state publication; it is not safe to call concurrently with
// Next.
func (s *Sequencer[E]) SetGatingSequences(sequences ...*Sequence) {
	s.gating = append([]*Sequence(nil), sequences...)
}

// Cursor returns the current cursor value.
func (s *Sequencer[E]) Cursor() int64 {
	return s.cursor.Load()
}

// NewBarrier creates a barrier gating on the cursor and the given
// dependent sequences. Consumers with upstream consumers pass the
// upstream sequences; head consumers pass none and wait on the cursor
// directly. The barrier does not outlive the sequencer.
func (s *Sequencer[E]) NewBarrier(dependents ...*Sequence) *SequenceBarrier {
	return &SequenceBarrier{
		cursor:     s.cursor,
		dependents: append([]*Sequence(nil), dependents...),
		wait:       s.wait,
		avail:      s.avail,
	}
}

// Get returns a pointer to the slot for sequence. Between Next and
// Publish the producer owns the slot; after publication consumers may
// read it until the buffer wraps.
func (s *Sequencer[E]) Get(sequence int64) *E {
	return s.buffer.Get(sequence)
}

// Cap returns the ring buffer capacity.
func (s *Sequencer[E]) Cap() int64 {
	return s.buffer.Cap()
}
