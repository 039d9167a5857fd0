// Package msgid implements the per-Endpoint message-ID registry: a
// layered, lock-free hash table keyed by messageID, each live slot owning
// the query arena of its in-flight operation.
package msgid

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/oba-ldap/ldapwire/internal/arena"
)

// outboundBit marks messageIDs this endpoint allocated for its own
// outbound requests, distinguishing them from inward-initiated exchanges.
// It is cleared before the ID is placed on the wire.
const outboundBit = uint32(1) << 31

// DefaultLayerSize is the slot count of each layer, scaled the way the
// teacher scales its internal hash tables for 64-bit pointer size.
const DefaultLayerSize = 64

type slot struct {
	id    atomic.Uint32
	arena atomic.Pointer[arena.Pool]
}

type layer struct {
	slots []slot
	next  atomic.Pointer[layer]
}

func newLayer(size int) *layer {
	return &layer{slots: make([]slot, size)}
}

// Registry is a per-Endpoint, append-only layered hash table. The zero
// value is not usable; construct with New.
type Registry struct {
	head      *layer
	layerSize int

	// randMu guards the non-cryptographic PRNG used to pick candidate
	// IDs; contention here is expected to be negligible next to the
	// output queue's.
	randMu sync.Mutex
	rng    *rand.Rand
}

// New creates an empty registry with one layer of layerSize slots (or
// DefaultLayerSize if layerSize <= 0).
func New(layerSize int) *Registry {
	if layerSize <= 0 {
		layerSize = DefaultLayerSize
	}
	return &Registry{
		head:      newLayer(layerSize),
		layerSize: layerSize,
		rng:       rand.New(rand.NewSource(1)),
	}
}

func (r *Registry) candidate() uint32 {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	for {
		v := r.rng.Uint32() | outboundBit
		if v != outboundBit { // exclude the reserved zero-payload id
			return v
		}
	}
}

// Allocate claims a fresh messageID (with the outbound high bit set) and
// a new query arena for it. It never returns id 0.
func (r *Registry) Allocate() (id uint32, pool *arena.Pool) {
	for {
		candidate := r.candidate()
		pool := arena.New()
		placed, ok := r.tryPlace(candidate, pool)
		if ok {
			return placed, pool
		}
		pool.End()
	}
}

// tryPlace attempts to claim id across every existing layer, appending a
// new layer if every layer's slot for id is occupied by a different id.
// ok is false only when id itself collided with an already-live slot
// holding the same id (caller should retry with a new candidate).
func (r *Registry) tryPlace(id uint32, pool *arena.Pool) (placed uint32, ok bool) {
	l := r.head
	idx := int(id % uint32(r.layerSize))
	for {
		s := &l.slots[idx]
		if s.id.CompareAndSwap(0, id) {
			s.arena.Store(pool)
			return id, true
		}
		if s.id.Load() == id {
			return 0, false
		}
		next := l.next.Load()
		if next == nil {
			fresh := newLayer(r.layerSize)
			if l.next.CompareAndSwap(nil, fresh) {
				next = fresh
			} else {
				next = l.next.Load()
			}
		}
		l = next
	}
}

// Lookup returns the arena owned by id's slot, or nil and false if no
// live slot holds id.
func (r *Registry) Lookup(id uint32) (*arena.Pool, bool) {
	idx := int(id % uint32(r.layerSize))
	for l := r.head; l != nil; l = l.next.Load() {
		s := &l.slots[idx]
		if s.id.Load() == id {
			if p := s.arena.Load(); p != nil {
				return p, true
			}
		}
	}
	return nil, false
}

// Free ends id's arena and releases its slot. Idempotent: freeing an
// already-free or never-allocated id is a no-op. The arena is ended and
// cleared before the id field is zeroed, so the slot cannot be claimed by
// a new id while the old arena is still attached; a concurrent Lookup
// that sees the id with no arena reports it absent.
func (r *Registry) Free(id uint32) {
	idx := int(id % uint32(r.layerSize))
	for l := r.head; l != nil; l = l.next.Load() {
		s := &l.slots[idx]
		if s.id.Load() != id {
			continue
		}
		if p := s.arena.Swap(nil); p != nil {
			p.End()
		}
		s.id.Store(0)
		return
	}
}

// Store places an already-created pool at id's slot directly, for the
// case where a query arena created by the shallow parser needs to outlive
// its originating callback — a pipelined exchange whose response has
// not yet been emitted. Returns false if id collided with an
// already-live slot.
func (r *Registry) Store(id uint32, pool *arena.Pool) bool {
	_, ok := r.tryPlace(id, pool)
	return ok
}

// FreeAll ends and releases every currently live slot, used by Endpoint
// teardown: every in-flight query arena is ended before the connection
// arena itself is.
func (r *Registry) FreeAll() {
	for l := r.head; l != nil; l = l.next.Load() {
		for i := range l.slots {
			s := &l.slots[i]
			if p := s.arena.Swap(nil); p != nil {
				p.End()
			}
			s.id.Store(0)
		}
	}
}

// LayerCount returns the number of layers currently appended, for tests
// asserting the registry grows under saturation and never shrinks.
func (r *Registry) LayerCount() int {
	n := 0
	for l := r.head; l != nil; l = l.next.Load() {
		n++
	}
	return n
}
