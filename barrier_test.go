// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor_test

import (
	"testing"
	"time"

	"code.hybscloud.com/disruptor"
)

func TestBarrierWaitForReturnsPublished(t *testing.T) {
	s, err := disruptor.NewSequencer[int64](8, nil, disruptor.SingleProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	consumer := disruptor.NewSequence()
	s.SetGatingSequences(consumer)
	barrier := s.NewBarrier()

	last := s.Next(3)
	s.PublishRange(last-2, last)

	if got := barrier.WaitFor(0); got != 2 {
		t.Fatalf("WaitFor(0): got %d, want 2", got)
	}
	if got := barrier.Cursor(); got != 2 {
		t.Fatalf("Cursor: got %d, want 2", got)
	}
}

func TestBarrierAlert(t *testing.T) {
	s, err := disruptor.NewSequencer[int64](8, nil, disruptor.SingleProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	barrier := s.NewBarrier()

	if barrier.Alerted() {
		t.Fatal("Alerted on fresh barrier: got true")
	}
	barrier.SetAlerted(true)
	if !barrier.Alerted() {
		t.Fatal("Alerted after SetAlerted(true): got false")
	}
	if got := barrier.WaitFor(0); got != disruptor.AlertedSignal {
		t.Fatalf("WaitFor on alerted barrier: got %d, want AlertedSignal", got)
	}

	barrier.SetAlerted(false)
	s.Publish(s.Next(1))
	if got := barrier.WaitFor(0); got != 0 {
		t.Fatalf("WaitFor after clearing alert: got %d, want 0", got)
	}
}

func TestBarrierTimeoutPassthrough(t *testing.T) {
	s, err := disruptor.NewSequencer[int64](8, nil, disruptor.SingleProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	barrier := s.NewBarrier()

	if got := barrier.WaitForTimeout(0, time.Microsecond); got != disruptor.TimeoutSignal {
		t.Fatalf("WaitForTimeout: got %d, want TimeoutSignal", got)
	}
}

// TestBarrierResolvesContiguousPrefix verifies the two-step resolution in
// multi-producer mode: the wait strategy reports the reserved cursor, the
// availability scan narrows it to the published prefix.
func TestBarrierResolvesContiguousPrefix(t *testing.T) {
	s, err := disruptor.NewSequencer[int64](8, nil, disruptor.MultiProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	consumer := disruptor.NewSequence()
	s.SetGatingSequences(consumer)
	barrier := s.NewBarrier()

	if got := s.Next(3); got != 2 {
		t.Fatalf("Next(3): got %d, want 2", got)
	}
	s.Publish(0)
	s.Publish(2)

	// Cursor is at 2 but only sequence 0 is contiguously published.
	if got := barrier.WaitFor(0); got != 0 {
		t.Fatalf("WaitFor(0): got %d, want 0", got)
	}
	// Sequence 1 is not yet published: the cursor satisfies the wait but
	// the scan reports one before the hole.
	if got := barrier.WaitFor(1); got != 0 {
		t.Fatalf("WaitFor(1) with hole at 1: got %d, want 0", got)
	}

	s.Publish(1)
	if got := barrier.WaitFor(1); got != 2 {
		t.Fatalf("WaitFor(1) after hole filled: got %d, want 2", got)
	}
}

func TestBarrierDependents(t *testing.T) {
	s, err := disruptor.NewSequencer[int64](8, nil, disruptor.SingleProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	upstream := disruptor.NewSequence()
	barrier := s.NewBarrier(upstream)

	s.PublishRange(0, 5)
	upstream.Store(2)

	// The cursor is at 5 but the upstream consumer bounds this barrier.
	if got := barrier.WaitFor(0); got != 2 {
		t.Fatalf("WaitFor(0): got %d, want 2", got)
	}
}
