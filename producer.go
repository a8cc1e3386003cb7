// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor

// EventProducer publishes events through the three-stage
// claim-write-publish protocol. One EventProducer per producing
// goroutine; the struct itself holds no state beyond the sequencer
// reference, so the producer-mode constraints of the sequencer apply
// unchanged.
type EventProducer[E any] struct {
	sequencer *Sequencer[E]
}

// NewEventProducer returns a producer publishing into s.
func NewEventProducer[E any](s *Sequencer[E]) *EventProducer[E] {
	return &EventProducer[E]{sequencer: s}
}

// PublishEvent claims batch sequences, translates each slot, and
// publishes. Blocks while the buffer lacks capacity.
//
// Single-producer mode publishes per sequence, making each event visible
// as soon as it is translated. Multi-producer mode publishes the whole
// range after translation so that every slot's availability flag is set;
// publishing only the last sequence would leave holes that
// highestPublished correctly refuses to read past.
func (p *EventProducer[E]) PublishEvent(translate EventTranslator[E], batch int64) int64 {
	if batch < 1 {
		batch = 1
	}
	last := p.sequencer.Next(batch)
	first := last - batch + 1
	if p.sequencer.mode == MultiProducer {
		for seq := first; seq <= last; seq++ {
			translate(seq, p.sequencer.Get(seq))
		}
		p.sequencer.PublishRange(first, last)
		return last
	}
	for seq := first; seq <= last; seq++ {
		translate(seq, p.sequencer.Get(seq))
		p.sequencer.Publish(seq)
	}
	return last
}

// TryPublishEvent is PublishEvent without blocking: it returns
// ErrWouldBlock and publishes nothing when the buffer lacks capacity for
// the whole batch.
func (p *EventProducer[E]) TryPublishEvent(translate EventTranslator[E], batch int64) (int64, error) {
	if batch < 1 {
		batch = 1
	}
	last, err := p.sequencer.TryNext(batch)
	if err != nil {
		return InitialSequenceValue, err
	}
	first := last - batch + 1
	for seq := first; seq <= last; seq++ {
		translate(seq, p.sequencer.Get(seq))
	}
	p.sequencer.PublishRange(first, last)
	return last, nil
}
