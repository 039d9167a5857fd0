//go:build ldapwire_singlethreaded

// This file implements a degenerate single-threaded variant of the
// output queue, selected by building with -tags ldapwire_singlethreaded
// instead of queue.go's Vyukov MPSC implementation. The exported API
// (Item, Queue, New, SetWakeup, Enqueue, Dequeue, Empty) is identical so
// callers never know which file was compiled in.
package queue

import (
	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
)

// Item is one outgoing send item: a run of cursors to write in order,
// plus an optional arena to End once every cursor has been written.
type Item struct {
	next    *Item
	Arena   *arena.Pool
	Cursors []der.Cursor
}

// Queue is a plain singly linked FIFO queue, valid only when every
// Enqueue/Dequeue call is made from the same goroutine (or otherwise
// externally serialized); there is no locking or atomic access here at
// all.
type Queue struct {
	head *Item
	tail *Item

	wakeup func()
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// SetWakeup installs a callback invoked after every successful Enqueue.
// Pass nil to clear it.
func (q *Queue) SetWakeup(fn func()) {
	q.wakeup = fn
}

// Enqueue appends item to the tail of the queue.
func (q *Queue) Enqueue(item *Item) {
	item.next = nil
	if q.tail == nil {
		q.head = item
		q.tail = item
	} else {
		q.tail.next = item
		q.tail = item
	}
	if q.wakeup != nil {
		q.wakeup()
	}
}

// Dequeue removes and returns the item at the front of the queue.
func (q *Queue) Dequeue() (*Item, bool) {
	if q.head == nil {
		return nil, false
	}
	item := q.head
	q.head = item.next
	if q.head == nil {
		q.tail = nil
	}
	return item, true
}

// Empty reports whether the queue currently has no items.
func (q *Queue) Empty() bool {
	return q.head == nil
}
