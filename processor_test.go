// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor_test

import (
	"testing"
	"time"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/disruptor"
)

// waitForSequence polls until s reaches at least target or the deadline
// expires.
func waitForSequence(t *testing.T, s *disruptor.Sequence, target int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	backoff := iox.Backoff{}
	for s.Load() < target {
		if time.Now().After(deadline) {
			t.Fatalf("sequence stuck at %d, want >= %d", s.Load(), target)
		}
		backoff.Wait()
	}
}

func TestProcessorProcessesInOrder(t *testing.T) {
	if disruptor.RaceEnabled {
		t.Skip("skip: acquire-release ordering is invisible to the race detector")
	}

	s, err := disruptor.NewSequencer(8, newTestEvent, disruptor.SingleProducer, disruptor.Yielding)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}

	var order []int64
	p := disruptor.NewEventProcessor(s, s.NewBarrier(),
		disruptor.EventHandlerFunc[testEvent](func(seq int64, ev *testEvent) {
			order = append(order, seq)
		}))
	s.SetGatingSequences(p.Sequence())

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	producer := disruptor.NewEventProducer(s)
	producer.PublishEvent(fillValue, 5)
	waitForSequence(t, p.Sequence(), 4)

	p.Stop()
	<-done

	if len(order) != 5 {
		t.Fatalf("handled events: got %d, want 5", len(order))
	}
	for i, seq := range order {
		if seq != int64(i) {
			t.Fatalf("event %d: got sequence %d, want %d", i, seq, i)
		}
	}
}

// TestProcessorRestartResumes verifies that after a stop/start cycle the
// processor picks up at last-processed + 1, derived from its stored
// sequence rather than any loop-local counter.
func TestProcessorRestartResumes(t *testing.T) {
	if disruptor.RaceEnabled {
		t.Skip("skip: acquire-release ordering is invisible to the race detector")
	}

	s, err := disruptor.NewSequencer(8, newTestEvent, disruptor.SingleProducer, disruptor.Blocking)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}

	var order []int64
	p := disruptor.NewEventProcessor(s, s.NewBarrier(),
		disruptor.EventHandlerFunc[testEvent](func(seq int64, ev *testEvent) {
			order = append(order, seq)
		}))
	s.SetGatingSequences(p.Sequence())
	producer := disruptor.NewEventProducer(s)

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	producer.PublishEvent(fillValue, 3)
	waitForSequence(t, p.Sequence(), 2)
	p.Stop()
	<-done

	producer.PublishEvent(fillValue, 2)
	done = make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	waitForSequence(t, p.Sequence(), 4)
	p.Stop()
	<-done

	want := []int64{0, 1, 2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("handled events: got %v, want %v", order, want)
	}
	for i, seq := range order {
		if seq != want[i] {
			t.Fatalf("handled events: got %v, want %v", order, want)
		}
	}
}

func TestProcessorStopWithoutRun(t *testing.T) {
	s, err := disruptor.NewSequencer(8, newTestEvent, disruptor.SingleProducer, disruptor.BusySpin)
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	p := disruptor.NewEventProcessor(s, s.NewBarrier(),
		disruptor.EventHandlerFunc[testEvent](func(int64, *testEvent) {}))

	// Stop with no active loop is a no-op.
	p.Stop()
	if p.Running() {
		t.Fatal("Running after Stop without Run: got true")
	}
}
