// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package disruptor provides high-throughput, low-latency message passing
// between goroutines over a pre-allocated ring buffer indexed by a
// monotonically increasing 64-bit sequence.
//
// Producers claim slots, write event payloads in place, and publish;
// consumers observe the published cursor and process events in sequence
// order. Consumers can fan out in parallel or form directed acyclic
// dependency graphs, and the slowest terminal consumer gates producers so
// no slot is overwritten before everyone has read it.
//
// # Quick Start
//
//	type Trade struct {
//		ID    int64
//		Price float64
//	}
//
//	d, err := disruptor.New(1024, func() Trade { return Trade{} }).Build()
//	if err != nil {
//		// capacity was not a positive power of two
//	}
//	d.HandleEventsWith(disruptor.EventHandlerFunc[Trade](func(seq int64, t *Trade) {
//		process(t)
//	}))
//	d.Start()
//
//	d.PublishEvent(func(seq int64, t *Trade) {
//		t.ID = seq
//		t.Price = 42.0
//	}, 1)
//
//	d.Shutdown()
//
// # Consumer Graphs
//
// HandleEventsWith starts a parallel group; Then chains a downstream
// group that never overtakes its upstream:
//
//	// pipeline: journal -> replicate -> apply
//	d.HandleEventsWith(journal).Then(replicate).Then(apply)
//
//	// diamond: journal and replicate in parallel, apply after both
//	d.HandleEventsWith(journal, replicate).Then(apply)
//
// # Producer Modes
//
// SingleProducer (default) keeps the claim path free of atomics and is
// only safe with exactly one publishing goroutine. MultiProducer
// serializes claims with CAS and tracks publication per slot, so
// producers may commit out of order while consumers still observe a
// contiguous published prefix.
//
// # Wait Strategies
//
// Four disciplines with one contract, trading latency against CPU:
//
//	BusySpin  tight spin, lowest latency, saturates a core
//	Yielding  spin a budget, then yield the processor
//	Sleeping  spin, yield, then sleep in 1µs slices
//	Blocking  condvar park, lowest CPU, highest latency
//
// # Lower-Level API
//
// The Disruptor type is a convenience layer. NewSequencer,
// Sequencer.NewBarrier, NewEventProducer, and NewEventProcessor expose
// the parts for custom wiring of producers, barriers, and processors.
//
// # Race Detection
//
// Go's race detector cannot track happens-before edges established
// through the acquire-release atomics this package is built on, and
// reports false positives on the slot accesses they guard. Tests
// incompatible with race detection are excluded via //go:build !race or
// skipped at run time when RaceEnabled is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions, [code.hybscloud.com/iox] for semantic errors and
// backoff, [github.com/panjf2000/ants/v2] for the processor goroutine
// pool, and go.uber.org/zap (via the logging subpackage) for lifecycle
// logging.
package disruptor
