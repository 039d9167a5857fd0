//go:build !ldapwire_singlethreaded

// Package queue implements the outgoing lock-free multi-producer,
// single-consumer queue of outbound send items that sit between an
// Endpoint's encoder and its socket writer.
//
// A pointer-to-the-next-field threaded through the tail has no clean Go
// expression without unsafe.Pointer arithmetic on struct fields, so this
// package instead uses the well-known Vyukov intrusive MPSC queue (a
// stub/sentinel node plus one atomic producer-side pointer and a plain
// consumer-only tail pointer): exactly one queue, lock-free enqueue under
// any number of producers, single-consumer dequeue, FIFO per producer.
//
// Build with -tags ldapwire_singlethreaded to swap in
// queue_singlethreaded.go, a degenerate variant where all atomic
// operations reduce to plain loads/stores, for single-goroutine embedders
// that don't need the atomic handoff and want to avoid its overhead.
package queue

import (
	"sync/atomic"

	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
)

// Item is one outgoing send item: a run of cursors to write in order,
// plus an optional arena to End once every cursor has been written. An
// empty Cursors slice represents a no-op item rather than a sentinel
// cursor value.
type Item struct {
	next   atomic.Pointer[Item]
	Arena  *arena.Pool
	Cursors []der.Cursor
}

// Queue is a lock-free MPSC linked queue of *Item. The zero value is not
// usable; use New.
type Queue struct {
	head atomic.Pointer[Item]
	tail *Item
	stub Item

	wakeup atomic.Pointer[func()]
}

// New returns an empty queue.
func New() *Queue {
	q := &Queue{}
	q.head.Store(&q.stub)
	q.tail = &q.stub
	return q
}

// SetWakeup installs a callback invoked after every successful Enqueue,
// typically used to nudge a blocked writer. Pass nil to clear it.
func (q *Queue) SetWakeup(fn func()) {
	if fn == nil {
		q.wakeup.Store(nil)
		return
	}
	q.wakeup.Store(&fn)
}

// Enqueue appends item to the tail of the queue. Safe for any number of
// concurrent producers.
func (q *Queue) Enqueue(item *Item) {
	item.next.Store(nil)
	prev := q.head.Swap(item)
	prev.next.Store(item)
	if w := q.wakeup.Load(); w != nil {
		(*w)()
	}
}

// Dequeue removes and returns the item at the front of the queue. It
// returns (nil, false) both when the queue is genuinely empty and when a
// producer has reserved the slot via Swap but not yet linked it in (a
// brief window where the producer-side pointer chain is still being
// stitched together); callers drive an event loop and simply retry the
// next tick rather than busy-looping here.
func (q *Queue) Dequeue() (*Item, bool) {
	tail := q.tail
	next := tail.next.Load()

	if tail == &q.stub {
		if next == nil {
			return nil, false
		}
		q.tail = next
		tail = next
		next = next.next.Load()
	}

	if next != nil {
		q.tail = next
		return tail, true
	}

	head := q.head.Load()
	if tail != head {
		return nil, false
	}

	q.pushStub()
	next = tail.next.Load()
	if next != nil {
		q.tail = next
		return tail, true
	}
	return nil, false
}

// Empty reports whether the queue currently has no items ready for the
// consumer to observe.
func (q *Queue) Empty() bool {
	return q.tail == &q.stub && q.tail.next.Load() == nil
}

func (q *Queue) pushStub() {
	s := &q.stub
	s.next.Store(nil)
	prev := q.head.Swap(s)
	prev.next.Store(s)
}
