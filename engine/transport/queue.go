package transport

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/engine/event"
)

// slot pairs an event with the sequence stamp that arbitrates ownership.
// For the slot serving queue position p the stamp means:
//
//	2p   — free, the producer may write
//	2p+1 — published, the consumer may read
//
// Consuming or dropping position p restamps the slot to 2(p+capacity),
// freeing it for the producer's next lap. Doubling keeps the free and
// published stamps distinct even at capacity 1, where position p+capacity
// reuses the slot of position p.
type slot struct {
	seq atomic.Uint64
	ev  event.Event
}

// Queue is the bounded single-producer/single-consumer bridge that carries
// events from the control context into the render context. When full the
// producer drops the oldest unconsumed event and counts the overflow,
// preferring a lost stale event over a stalled render deadline.
//
// Every event read and write is fenced by the slot's sequence stamp, so the
// two contexts never touch the same event memory concurrently. The render
// side never waits: Pop reads an unpublished slot as empty. Push reclaims a
// full queue through the drop-oldest path and at worst spins while the
// consumer finishes vacating the oldest slot mid-pop.
type Queue struct {
	buf      []slot
	capacity uint64

	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to depth events.
func NewQueue(depth int) (*Queue, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("transport: queue depth must be > 0: %d", depth)
	}
	q := &Queue{
		buf:      make([]slot, depth),
		capacity: uint64(depth),
	}
	for i := range q.buf {
		q.buf[i].seq.Store(uint64(2 * i))
	}
	return q, nil
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return int(q.capacity)
}

// Len returns the number of queued events. Exact only for the two owning
// goroutines; advisory elsewhere.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Dropped returns the number of events discarded by the overflow policy.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Push enqueues ev from the control context. When full it first drops the
// oldest unconsumed event and increments the overflow counter.
func (q *Queue) Push(ev event.Event) {
	t := q.tail.Load()
	s := &q.buf[t%q.capacity]
	for s.seq.Load() != 2*t {
		// The slot still carries the event from one lap ago. If the queue
		// is full, reclaim the oldest position; when the CAS fails, or the
		// queue is not full, the consumer is mid-pop of that slot and
		// restamps it within a few instructions.
		h := q.head.Load()
		if t-h >= q.capacity && q.head.CompareAndSwap(h, h+1) {
			q.dropped.Add(1)
			q.buf[h%q.capacity].seq.Store(2 * (h + q.capacity))
		}
	}
	s.ev = ev
	s.seq.Store(2*t + 1)
	q.tail.Store(t + 1)
}

// Pop dequeues the oldest event on the render context. It returns false
// when no published event is available and never blocks. Claiming head
// before touching the event keeps the read exclusive; a failed claim or a
// restamped slot means the producer dropped that position, and the retry
// moves on to the next one.
func (q *Queue) Pop() (event.Event, bool) {
	for {
		h := q.head.Load()
		s := &q.buf[h%q.capacity]
		switch s.seq.Load() {
		case 2*h + 1:
			if !q.head.CompareAndSwap(h, h+1) {
				continue
			}
			ev := s.ev
			s.seq.Store(2 * (h + q.capacity))
			return ev, true
		case 2 * h:
			// Not yet published.
			return event.Event{}, false
		default:
			// Stale head: the producer reclaimed this position. Reload.
		}
	}
}

// Drain pops every queued event into out, up to the queue capacity, and
// returns the extended slice. Intended for the start-of-block event sweep
// on the render context.
func (q *Queue) Drain(out []event.Event) []event.Event {
	for i := uint64(0); i < q.capacity; i++ {
		ev, ok := q.Pop()
		if !ok {
			break
		}
		out = append(out, ev)
	}
	return out
}
