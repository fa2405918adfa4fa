package list

import (
	"sync/atomic"
	"unsafe"

	"github.com/skl-go/skiplist/lib/infra"
)

// lockedNode is the unit of Locked. Its key and level never change
// after construction; val is set once, before fullyLinked is
// published, and never mutated afterwards (Locked never overwrites an
// existing key). forward, flags, and mu are the only mutable state.
// forward slots are never read or written through the plain slice
// index directly — atomicLoadForward/atomicStoreForward publish a
// link's write via its predecessor's lock release and let find,
// ForEach, and Dump observe it without ever taking that lock, per
// spec §5 ("readers that traverse without locks see either the pre-
// or post-splice value — both are safe").
type lockedNode[K infra.OrderedKey, V any] struct {
	key     K
	val     V
	forward []*lockedNode[K, V]
	mu      segmentedMutex
	flags   flagBits
	level   int32
}

func (n *lockedNode[K, V]) atomicLoadForward(i int32) *lockedNode[K, V] {
	return (*lockedNode[K, V])(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&n.forward[i]))))
}

func (n *lockedNode[K, V]) atomicStoreForward(i int32, next *lockedNode[K, V]) {
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&n.forward[i])), unsafe.Pointer(next))
}

func newLockedNode[K infra.OrderedKey, V any](key K, val V, level int32, e mutexEnum) *lockedNode[K, V] {
	return &lockedNode[K, V]{
		key:     key,
		val:     val,
		level:   level,
		forward: make([]*lockedNode[K, V], level+1),
		mu:      mutexFactory(e),
	}
}

func newLockedHead[K infra.OrderedKey, V any](maxLevel int32, e mutexEnum) *lockedNode[K, V] {
	head := &lockedNode[K, V]{
		level:   maxLevel,
		forward: make([]*lockedNode[K, V], maxLevel+1),
		mu:      mutexFactory(e),
	}
	head.flags.atomicSet(nodeFullyLinked)
	return head
}

func newLockedTail[K infra.OrderedKey, V any](e mutexEnum) *lockedNode[K, V] {
	tail := &lockedNode[K, V]{
		mu: mutexFactory(e),
	}
	tail.flags.atomicSet(nodeFullyLinked)
	return tail
}
