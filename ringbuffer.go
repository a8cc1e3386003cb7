// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

// RingBuffer is fixed power-of-two slot storage addressed by sequence.
//
// The mapping from sequence to slot is seq & (n-1); there is no bounds
// check beyond the mask. Slot k is exclusively writable by the producer
// holding the reservation for the sequence currently mapping to k, and
// readable by consumers until the next wrap overwrites it. That ownership
// discipline is enforced by the claim strategies, not here.
type RingBuffer[E any] struct {
	slots []E
	mask  int64
}

// NewRingBuffer allocates a buffer of capacity slots, filling each from
// factory. Capacity must be a positive power of two; returns
// ErrInvalidCapacity otherwise. A nil factory leaves zero-valued slots.
func NewRingBuffer[E any](capacity int64, factory EventFactory[E]) (*RingBuffer[E], error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrInvalidCapacity
	}
	slots := make([]E, capacity)
	if factory != nil {
		for i := range slots {
			slots[i] = factory()
		}
	}
	return &RingBuffer[E]{
		slots: slots,
		mask:  capacity - 1,
	}, nil
}

// Get returns a pointer to the slot for sequence. The slot is mutated in
// place across wraps; sequences s and s+Cap() alias the same slot.
func (b *RingBuffer[E]) Get(sequence int64) *E {
	return &b.slots[sequence&b.mask]
}

// Cap returns the number of slots.
func (b *RingBuffer[E]) Cap() int64 {
	return b.mask + 1
}
