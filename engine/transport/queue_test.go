package transport

import (
	"sync"
	"testing"

	"github.com/cwbudde/algo-synth/engine/event"
)

func TestNewQueueValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewQueue(0); err == nil {
		t.Error("expected error for zero depth")
	}
	if _, err := NewQueue(-1); err == nil {
		t.Error("expected error for negative depth")
	}
}

func TestPushPopFIFO(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	for i := uint8(0); i < 5; i++ {
		q.Push(event.NoteOn(0, 60+i, 100))
	}

	for i := uint8(0); i < 5; i++ {
		ev, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue empty", i)
		}
		if ev.Note != 60+i {
			t.Fatalf("Pop %d note = %d, want %d", i, ev.Note, 60+i)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("queue should be empty")
	}
}

// TestOverflowDropsExactlyOldest fills the queue to capacity plus one and
// checks that exactly the oldest event was dropped and the counter moved
// by one.
func TestOverflowDropsExactlyOldest(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	for i := uint8(0); i < 5; i++ {
		q.Push(event.NoteOn(0, 60+i, 100))
	}

	if got := q.Dropped(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}

	// Note 60 is gone; 61..64 remain in order.
	for i := uint8(1); i < 5; i++ {
		ev, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop: queue empty at %d", i)
		}
		if ev.Note != 60+i {
			t.Fatalf("note = %d, want %d", ev.Note, 60+i)
		}
	}
}

func TestDrain(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	q.Push(event.Start())
	q.Push(event.Tempo(140))
	q.Push(event.Stop())

	out := q.Drain(nil)
	if len(out) != 3 {
		t.Fatalf("drained %d events, want 3", len(out))
	}
	if out[0].Kind != event.KindStart || out[1].Kind != event.KindTempo || out[2].Kind != event.KindStop {
		t.Fatalf("drain order wrong: %+v", out)
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d after drain, want 0", q.Len())
	}
}

// TestConcurrentProducerConsumer hammers the queue from one producer and
// one consumer and checks that every consumed event is valid and in
// producer order modulo drops.
func TestConcurrentProducerConsumer(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(32)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	const total = 100000

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < total; i++ {
			q.Push(event.ParamChange(0, float64(i)))
		}
	}()

	last := -1.0
	consumed := 0
	producerDone := false
	for {
		ev, ok := q.Pop()
		if !ok {
			if producerDone {
				break
			}
			select {
			case <-done:
				producerDone = true
			default:
			}
			continue
		}
		if ev.Kind != event.KindParamChange {
			t.Fatalf("corrupt event kind: %v", ev.Kind)
		}
		if ev.Value <= last {
			t.Fatalf("out-of-order value %v after %v", ev.Value, last)
		}
		last = ev.Value
		consumed++
	}

	wg.Wait()

	if consumed+int(q.Dropped()) < total {
		t.Fatalf("consumed %d + dropped %d < produced %d", consumed, q.Dropped(), total)
	}
}

// TestConcurrentDepthOneContention runs a depth-1 queue so that every push
// contends with every pop for the same slot, the worst case for the
// slot-stamp protocol. Run with -race. Every produced event must come out
// intact and in order, or be counted as dropped — nothing lost, nothing
// torn.
func TestConcurrentDepthOneContention(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(1)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	const total = 50000

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < total; i++ {
			q.Push(event.ParamChange(0, float64(i)))
		}
	}()

	last := -1.0
	consumed := 0
	producerDone := false
	for {
		ev, ok := q.Pop()
		if !ok {
			if producerDone {
				break
			}
			select {
			case <-done:
				producerDone = true
			default:
			}
			continue
		}
		if ev.Kind != event.KindParamChange {
			t.Fatalf("corrupt event kind: %v", ev.Kind)
		}
		if ev.Value != float64(int(ev.Value)) || ev.Value <= last {
			t.Fatalf("corrupt or out-of-order value %v after %v", ev.Value, last)
		}
		last = ev.Value
		consumed++
	}

	wg.Wait()

	if got := consumed + int(q.Dropped()); got != total {
		t.Fatalf("consumed %d + dropped %d = %d, want exactly %d",
			consumed, q.Dropped(), got, total)
	}
}

func BenchmarkPushPop(b *testing.B) {
	q, err := NewQueue(128)
	if err != nil {
		b.Fatalf("NewQueue: %v", err)
	}

	ev := event.NoteOn(0, 60, 100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(ev)
		q.Pop()
	}
}
