// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/disruptor/logging"
)

// EventProcessor drives one EventHandler on a dedicated goroutine.
//
// The processor owns its Sequence, which starts at InitialSequenceValue
// and trails the highest sequence the handler has finished. Downstream
// processors and the producer gate on that Sequence, so it must only
// advance after the handler returns.
type EventProcessor[E any] struct {
	running   atomix.Bool
	sequence  *Sequence
	sequencer *Sequencer[E]
	barrier   *SequenceBarrier
	handler   EventHandler[E]
}

// NewEventProcessor wires a processor to its barrier and handler.
func NewEventProcessor[E any](sequencer *Sequencer[E], barrier *SequenceBarrier, handler EventHandler[E]) *EventProcessor[E] {
	return &EventProcessor[E]{
		sequence:  NewSequence(),
		sequencer: sequencer,
		barrier:   barrier,
		handler:   handler,
	}
}

// Sequence returns the processor's own sequence, for use as a barrier
// dependent or gating sequence.
func (p *EventProcessor[E]) Sequence() *Sequence {
	return p.sequence
}

// Run executes the processing loop until Stop or a barrier alert.
// Call it on a dedicated goroutine; it blocks for the processor's
// lifetime. A second Run while one is active returns immediately.
func (p *EventProcessor[E]) Run() {
	if p.running.LoadAcquire() {
		return
	}
	p.running.StoreRelease(true)
	p.barrier.SetAlerted(false)

	p.handler.OnStart()
	logging.Debugf("disruptor: processor started at sequence %d", p.sequence.Load())

	for {
		// The next sequence to process is recomputed from the stored
		// sequence, not carried across iterations: after a stop/restart
		// cycle "next" must still equal "last processed + 1".
		next := p.sequence.Load() + 1
		available := p.barrier.WaitFor(next)
		// Only the alert and timeout sentinels end the loop. A return of
		// next-1 (down to -1) just means the barrier saw the cursor move
		// before the slot's publication landed; retry.
		if available < InitialSequenceValue {
			break
		}
		for seq := next; seq <= available; seq++ {
			p.handler.OnEvent(seq, p.sequencer.Get(seq))
		}
		p.sequence.Store(available)
		if !p.running.LoadAcquire() {
			break
		}
	}

	p.handler.OnShutdown()
	logging.Debugf("disruptor: processor stopped at sequence %d", p.sequence.Load())
	p.running.StoreRelease(false)
}

// Running reports whether the processing loop is active.
func (p *EventProcessor[E]) Running() bool {
	return p.running.LoadAcquire()
}

// Stop requests the processing loop to exit. Idempotent; a Stop with no
// active loop does nothing.
//
// The alert and the signal are both issued unconditionally: the alert
// flips the flag the wait strategies poll, and the signal wakes a waiter
// parked on the blocking strategy's condvar, which cannot observe the
// flag until woken.
func (p *EventProcessor[E]) Stop() {
	if !p.running.LoadAcquire() {
		return
	}
	p.running.StoreRelease(false)
	p.barrier.SetAlerted(true)
	p.barrier.SignalAllWhenBlocking()
}
