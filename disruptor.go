// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/panjf2000/ants/v2"

	"code.hybscloud.com/disruptor/logging"
)

// Builder creates a Disruptor with fluent configuration.
//
// Example:
//
//	d, err := disruptor.New(1024, newOrder).
//		MultiProducer().
//		Blocking().
//		Build()
//	d.HandleEventsWith(journaler).Then(matcher)
//	d.Start()
type Builder[E any] struct {
	capacity int64
	factory  EventFactory[E]
	mode     ProducerMode
	wait     WaitStrategyOption
}

// New creates a disruptor builder with the given ring buffer capacity
// and slot factory. Capacity must be a positive power of two; the
// violation surfaces from Build. Defaults: single producer, busy-spin
// waiting.
func New[E any](capacity int64, factory EventFactory[E]) *Builder[E] {
	return &Builder[E]{
		capacity: capacity,
		factory:  factory,
	}
}

// SingleProducer declares that only one goroutine will publish.
// This is the default; the claim path carries no atomics.
func (b *Builder[E]) SingleProducer() *Builder[E] {
	b.mode = SingleProducer
	return b
}

// MultiProducer declares that multiple goroutines will publish
// concurrently. Reservations are serialized by CAS on the cursor and
// publication is tracked per slot.
func (b *Builder[E]) MultiProducer() *Builder[E] {
	b.mode = MultiProducer
	return b
}

// BusySpin selects the busy-spin wait strategy (the default).
func (b *Builder[E]) BusySpin() *Builder[E] {
	b.wait = BusySpin
	return b
}

// Yielding selects the spin-then-yield wait strategy.
func (b *Builder[E]) Yielding() *Builder[E] {
	b.wait = Yielding
	return b
}

// Sleeping selects the spin-yield-sleep wait strategy.
func (b *Builder[E]) Sleeping() *Builder[E] {
	b.wait = Sleeping
	return b
}

// Blocking selects the condvar-based wait strategy.
func (b *Builder[E]) Blocking() *Builder[E] {
	b.wait = Blocking
	return b
}

// Build constructs the Disruptor. Wire the handler graph with
// HandleEventsWith/Then before calling Start.
func (b *Builder[E]) Build() (*Disruptor[E], error) {
	sequencer, err := NewSequencer(b.capacity, b.factory, b.mode, b.wait)
	if err != nil {
		return nil, err
	}
	return &Disruptor[E]{
		sequencer: sequencer,
		producer:  NewEventProducer(sequencer),
		depended:  make(map[*Sequence]bool),
	}, nil
}

// Disruptor owns a sequencer and the consumer graph built on it, and
// runs the processors on a goroutine pool.
//
// Lifecycle: Build, wire handlers into a DAG with HandleEventsWith and
// Then, Start, publish, Shutdown. The handler graph is fixed at Start;
// the processor sequences of groups nothing depends on become the gating
// set.
type Disruptor[E any] struct {
	sequencer  *Sequencer[E]
	producer   *EventProducer[E]
	processors []*EventProcessor[E]
	depended   map[*Sequence]bool
	pool       *ants.Pool
	wg         sync.WaitGroup
	running    atomix.Bool
}

// EventGroup is a set of handlers wired at the same depth of the
// consumer graph. Handlers in one group run in parallel; Then adds a
// downstream group that will not overtake any of them.
type EventGroup[E any] struct {
	d         *Disruptor[E]
	sequences []*Sequence
}

// HandleEventsWith adds handlers that consume directly from the ring
// buffer, each on its own goroutine. Returns the group for chaining
// downstream stages. Wiring must complete before Start.
func (d *Disruptor[E]) HandleEventsWith(handlers ...EventHandler[E]) *EventGroup[E] {
	return d.createGroup(nil, handlers)
}

// Then adds handlers that consume only after every handler in g,
// forming one edge of the dependency DAG.
func (g *EventGroup[E]) Then(handlers ...EventHandler[E]) *EventGroup[E] {
	return g.d.createGroup(g.sequences, handlers)
}

// Sequences returns the group's processor sequences, one per handler.
func (g *EventGroup[E]) Sequences() []*Sequence {
	return append([]*Sequence(nil), g.sequences...)
}

func (d *Disruptor[E]) createGroup(dependents []*Sequence, handlers []EventHandler[E]) *EventGroup[E] {
	sequences := make([]*Sequence, 0, len(handlers))
	for _, h := range handlers {
		barrier := d.sequencer.NewBarrier(dependents...)
		p := NewEventProcessor(d.sequencer, barrier, h)
		d.processors = append(d.processors, p)
		sequences = append(sequences, p.Sequence())
	}
	for _, dep := range dependents {
		d.depended[dep] = true
	}
	return &EventGroup[E]{d: d, sequences: sequences}
}

// Start records the gating sequences and launches every processor on a
// pool goroutine. Idempotent while running.
func (d *Disruptor[E]) Start() error {
	if d.running.LoadAcquire() {
		return nil
	}

	gating := make([]*Sequence, 0, len(d.processors))
	for _, p := range d.processors {
		if !d.depended[p.Sequence()] {
			gating = append(gating, p.Sequence())
		}
	}
	d.sequencer.SetGatingSequences(gating...)

	pool, err := ants.NewPool(len(d.processors))
	if err != nil {
		return err
	}
	d.pool = pool
	for _, p := range d.processors {
		d.wg.Add(1)
		if err := pool.Submit(func() {
			defer d.wg.Done()
			p.Run()
		}); err != nil {
			d.wg.Done()
			d.stopProcessors()
			d.wg.Wait()
			pool.Release()
			return err
		}
	}

	d.running.StoreRelease(true)
	logging.Infof("disruptor: started %d processors, capacity %d, %d gating",
		len(d.processors), d.sequencer.Cap(), len(gating))
	return nil
}

// PublishEvent claims batch sequences, runs the translator on each slot,
// and publishes. Blocks while the buffer lacks capacity.
func (d *Disruptor[E]) PublishEvent(translate EventTranslator[E], batch int64) int64 {
	return d.producer.PublishEvent(translate, batch)
}

// Sequencer exposes the underlying sequencer for callers wiring
// additional producers or custom processors.
func (d *Disruptor[E]) Sequencer() *Sequencer[E] {
	return d.sequencer
}

// Drain blocks until every processor has consumed up to the cursor as of
// the call. Assumes every claimed sequence has been published; a claimed
// but unpublished reservation stalls the drain.
func (d *Disruptor[E]) Drain() {
	cursor := d.sequencer.Cursor()
	backoff := iox.Backoff{}
	for _, p := range d.processors {
		for p.Sequence().Load() < cursor {
			backoff.Wait()
		}
		backoff.Reset()
	}
}

// Shutdown drains the pipeline, stops every processor, and waits for
// their goroutines to exit. Idempotent when not running.
func (d *Disruptor[E]) Shutdown() {
	if !d.running.LoadAcquire() {
		return
	}
	d.Drain()
	d.stopProcessors()
	d.wg.Wait()
	d.pool.Release()
	d.running.StoreRelease(false)
	logging.Infof("disruptor: shut down at cursor %d", d.sequencer.Cursor())
}

func (d *Disruptor[E]) stopProcessors() {
	for _, p := range d.processors {
		p.Stop()
	}
}
