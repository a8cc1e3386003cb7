// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

// EventFactory produces the initial contents of one ring buffer slot.
// It is called once per slot at construction time; the instances it
// returns live for the lifetime of the buffer and are overwritten in
// place by translators as sequences wrap.
type EventFactory[E any] func() E

// EventTranslator populates one slot with the data of one event.
//
// It is called on the producer goroutine with the claimed sequence and a
// pointer to the slot that sequence maps to. The slot holds whatever the
// previous generation left behind; the translator must overwrite every
// field it cares about.
type EventTranslator[E any] func(sequence int64, event *E)

// EventHandler processes published events on a consumer goroutine.
//
// OnEvent is called once per sequence, in sequence order, with a pointer
// into the ring buffer. The pointed-to slot is only valid until the
// handler's own sequence advances past it, after which a producer may
// reuse the slot for the next turn of the buffer; handlers that need the
// data longer must copy it out.
//
// Panics from OnEvent are not recovered. A panicking handler terminates
// its consumer goroutine with the consumer sequence unchanged, which
// stalls upstream producers once the buffer wraps. The library cannot
// choose between skip, retry, and halt on the handler's behalf.
type EventHandler[E any] interface {
	// OnEvent is called with each published event in sequence order.
	OnEvent(sequence int64, event *E)

	// OnStart is called on the consumer goroutine before the first event.
	OnStart()

	// OnShutdown is called on the consumer goroutine after the processing
	// loop exits.
	OnShutdown()
}

// EventHandlerFunc adapts a plain function to an EventHandler with no-op
// lifecycle hooks.
type EventHandlerFunc[E any] func(sequence int64, event *E)

// OnEvent calls f.
func (f EventHandlerFunc[E]) OnEvent(sequence int64, event *E) { f(sequence, event) }

// OnStart is a no-op.
func (f EventHandlerFunc[E]) OnStart() {}

// OnShutdown is a no-op.
func (f EventHandlerFunc[E]) OnShutdown() {}
