// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package disruptor_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/disruptor"
)

func TestRingBufferInvalidCapacity(t *testing.T) {
	for _, capacity := range []int64{-8, -1, 0, 3, 6, 7, 12, 1000} {
		_, err := disruptor.NewRingBuffer[int](capacity, nil)
		if !errors.Is(err, disruptor.ErrInvalidCapacity) {
			t.Fatalf("NewRingBuffer(%d): got %v, want ErrInvalidCapacity", capacity, err)
		}
	}
}

func TestRingBufferValidCapacity(t *testing.T) {
	for _, capacity := range []int64{1, 2, 8, 1024, 1 << 26} {
		b, err := disruptor.NewRingBuffer[int](capacity, nil)
		if err != nil {
			t.Fatalf("NewRingBuffer(%d): %v", capacity, err)
		}
		if b.Cap() != capacity {
			t.Fatalf("Cap: got %d, want %d", b.Cap(), capacity)
		}
	}
}

func TestRingBufferFactoryFillsSlots(t *testing.T) {
	calls := 0
	b, err := disruptor.NewRingBuffer(8, func() int { calls++; return 7 })
	if err != nil {
		t.Fatalf("NewRingBuffer: %v", err)
	}
	if calls != 8 {
		t.Fatalf("factory calls: got %d, want 8", calls)
	}
	for seq := range int64(8) {
		if got := *b.Get(seq); got != 7 {
			t.Fatalf("slot %d: got %d, want 7", seq, got)
		}
	}
}

// TestRingBufferAliasing verifies the wrap mapping: sequences s and
// s + Cap address the same slot.
func TestRingBufferAliasing(t *testing.T) {
	const n = 8
	b, err := disruptor.NewRingBuffer[int64](n, nil)
	if err != nil {
		t.Fatalf("NewRingBuffer: %v", err)
	}
	for seq := range int64(n) {
		if b.Get(seq) != b.Get(seq+n) {
			t.Fatalf("slot for %d and %d differ", seq, seq+n)
		}
		if b.Get(seq) != b.Get(seq+7*n) {
			t.Fatalf("slot for %d and %d differ", seq, seq+7*n)
		}
	}
	*b.Get(3) = 33
	if got := *b.Get(3 + n); got != 33 {
		t.Fatalf("aliased read: got %d, want 33", got)
	}
}
