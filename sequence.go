// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"math"

	"code.hybscloud.com/atomix"
)

// Special sequence values. Sequences of published events are always >= 0,
// so the negative range is free for control signals carried on the same
// return channel.
const (
	// InitialSequenceValue is the value of every Sequence before the first
	// claim or consume. The first real sequence is 0.
	InitialSequenceValue int64 = -1

	// AlertedSignal is returned from a barrier wait when the barrier has
	// been alerted, typically during shutdown.
	AlertedSignal int64 = -2

	// TimeoutSignal is returned from a timed barrier wait when the deadline
	// passed before the requested sequence became visible.
	TimeoutSignal int64 = -3

	firstSequenceValue = InitialSequenceValue + 1
)

// cacheLine is the assumed cache line size in bytes.
const cacheLine = 64

// pad is cache line padding to prevent false sharing.
type pad [cacheLine]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [cacheLine - 8]byte

// Sequence is a monotonic 64-bit counter shared between goroutines.
//
// The counter is isolated on its own cache line. Producers and consumers
// each own one Sequence and mutate it at high frequency; without the
// padding, two counters allocated next to each other would ping the same
// line between cores on every update.
//
// Load carries acquire semantics and Store release semantics: observing a
// value v from Load implies all writes ordered before the Store that
// produced v are visible.
type Sequence struct {
	_     pad
	value atomix.Int64
	_     padShort
}

// NewSequence returns a Sequence initialized to InitialSequenceValue.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.value.StoreRelaxed(InitialSequenceValue)
	return s
}

// Load returns the current value (acquire).
func (s *Sequence) Load() int64 {
	return s.value.LoadAcquire()
}

// Store sets the current value (release).
func (s *Sequence) Store(v int64) {
	s.value.StoreRelease(v)
}

// AddAndGet atomically adds delta and returns the post-increment value.
func (s *Sequence) AddAndGet(delta int64) int64 {
	return s.value.AddAcqRel(delta)
}

// CompareAndSet atomically replaces expected with next.
// Reports whether the swap happened.
func (s *Sequence) CompareAndSet(expected, next int64) bool {
	return s.value.CompareAndSwapAcqRel(expected, next)
}

// minimumSequence returns the minimum value over sequences, loading each
// independently. No snapshot semantics: concurrent updates may be observed
// for some entries and not others, which is fine because every Sequence is
// monotonic. Returns math.MaxInt64 for an empty set.
func minimumSequence(sequences []*Sequence) int64 {
	minimum := int64(math.MaxInt64)
	for _, s := range sequences {
		if v := s.Load(); v < minimum {
			minimum = v
		}
	}
	return minimum
}
