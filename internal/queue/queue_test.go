//go:build !ldapwire_singlethreaded

package queue

import (
	"sort"
	"sync"
	"testing"

	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemWithTag(tag string) *Item {
	return &Item{Cursors: []der.Cursor{der.NewCursor([]byte(tag))}}
}

func TestEnqueueDequeueFIFOSingleProducer(t *testing.T) {
	q := New()
	for _, s := range []string{"a", "b", "c"} {
		q.Enqueue(itemWithTag(s))
	}

	var got []string
	for i := 0; i < 3; i++ {
		item, ok := q.Dequeue()
		require.True(t, ok)
		got = append(got, string(item.Cursors[0].Bytes()))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDequeueOnEmptyQueueReturnsFalse(t *testing.T) {
	q := New()
	_, ok := q.Dequeue()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestQueueReinitializesAfterDraining(t *testing.T) {
	q := New()
	q.Enqueue(itemWithTag("x"))
	_, ok := q.Dequeue()
	require.True(t, ok)
	assert.True(t, q.Empty())

	q.Enqueue(itemWithTag("y"))
	item, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "y", string(item.Cursors[0].Bytes()))
}

func TestWakeupCallbackInvokedOnEnqueue(t *testing.T) {
	q := New()
	calls := 0
	q.SetWakeup(func() { calls++ })
	q.Enqueue(itemWithTag("a"))
	q.Enqueue(itemWithTag("b"))
	assert.Equal(t, 2, calls)
}

// TestConcurrentProducersPreserveFIFOPerProducer checks that each
// producer's own items come out in the order it enqueued them, even
// though interleaving across producers is unspecified.
func TestConcurrentProducersPreserveFIFOPerProducer(t *testing.T) {
	q := New()
	const producers = 20
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				it := &Item{Cursors: []der.Cursor{
					der.NewCursor([]byte{byte(p), byte(i >> 8), byte(i)}),
				}}
				q.Enqueue(it)
			}
		}(p)
	}
	wg.Wait()

	lastSeen := make(map[byte]int)
	total := 0
	for {
		item, ok := q.Dequeue()
		if !ok {
			break
		}
		b := item.Cursors[0].Bytes()
		p := b[0]
		seq := int(b[1])<<8 | int(b[2])
		assert.Greater(t, seq, lastSeen[p]-1)
		lastSeen[p] = seq + 1
		total++
	}
	assert.Equal(t, producers*perProducer, total)

	var producersSeen []int
	for p := range lastSeen {
		producersSeen = append(producersSeen, int(p))
	}
	sort.Ints(producersSeen)
	assert.Len(t, producersSeen, producers)
	for _, p := range producersSeen {
		assert.Equal(t, perProducer, lastSeen[byte(p)])
	}
}
