package list

import (
	"fmt"
	"strings"
	"sync"

	"github.com/skl-go/skiplist/lib/infra"
)

// Fat is a classical Pugh skip list guarded by a single mutex. It
// exists as a simple reference oracle for Locked: same map contract,
// none of the lock-coupling machinery. Unlike Locked, Insert on an
// existing key overwrites the value in place but still reports false
// — a deliberately preserved behavioural difference from Locked,
// which never overwrites.
type Fat[K infra.OrderedKey, V any] struct {
	mu       sync.Mutex
	header   *fatNode[K, V]
	curLevel int32
	maxLevel int32
	length   int
	gen      *levelGenerator
}

// NewFat builds a Fat list. Default maxLevel is 16, default
// probability is 0.5.
func NewFat[K infra.OrderedKey, V any](opts ...Option[K, V]) *Fat[K, V] {
	o := &listOptions[K, V]{}
	for _, opt := range opts {
		opt.apply(o)
	}
	o.loadOrDefault()

	return &Fat[K, V]{
		header:   newFatNode[K, V](*new(K), *new(V), o.maxLevel),
		maxLevel: o.maxLevel,
		gen:      newLevelGenerator(o.maxLevel, o.probability),
	}
}

// findPredecessors walks from header down from curLevel to 0,
// recording the predecessor at each level in update. It returns the
// level-0 successor of the final predecessor, i.e. the node that is k
// if k is present.
func (f *Fat[K, V]) findPredecessors(key K, update []*fatNode[K, V]) *fatNode[K, V] {
	pred := f.header
	for level := f.curLevel; level >= 0; level-- {
		curr := pred.forward[level]
		for curr != nil && curr.key < key {
			pred = curr
			curr = pred.forward[level]
		}
		if update != nil {
			update[level] = pred
		}
	}
	return pred.forward[0]
}

func (f *Fat[K, V]) Insert(key K, val V) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	update := make([]*fatNode[K, V], f.maxLevel+1)
	existing := f.findPredecessors(key, update)
	if existing != nil && existing.key == key {
		existing.val = val
		return false
	}

	level := f.gen.randomLevel()
	if level > f.curLevel {
		for l := f.curLevel + 1; l <= level; l++ {
			update[l] = f.header
		}
		f.curLevel = level
	}

	node := newFatNode[K, V](key, val, level)
	for l := int32(0); l <= level; l++ {
		node.forward[l] = update[l].forward[l]
		update[l].forward[l] = node
	}
	f.length++
	return true
}

func (f *Fat[K, V]) Remove(key K) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	update := make([]*fatNode[K, V], f.maxLevel+1)
	victim := f.findPredecessors(key, update)
	if victim == nil || victim.key != key {
		return false
	}

	for l := int32(0); l <= f.curLevel; l++ {
		if update[l].forward[l] != victim {
			continue
		}
		update[l].forward[l] = victim.forward[l]
	}
	for f.curLevel > 0 && f.header.forward[f.curLevel] == nil {
		f.curLevel--
	}
	f.length--
	return true
}

func (f *Fat[K, V]) Search(key K) (V, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	candidate := f.findPredecessors(key, nil)
	if candidate == nil || candidate.key != key {
		return *new(V), false
	}
	return candidate.val, true
}

func (f *Fat[K, V]) ForEach(visit func(key K, val V)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for n := f.header.forward[0]; n != nil; n = n.forward[0] {
		visit(n.key, n.val)
	}
}

func (f *Fat[K, V]) Dump() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b strings.Builder
	for level := f.curLevel; level >= 0; level-- {
		fmt.Fprintf(&b, "L%d:", level)
		for n := f.header.forward[level]; n != nil; n = n.forward[level] {
			fmt.Fprintf(&b, " %v", n.key)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Fat[K, V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.length
}

func (f *Fat[K, V]) MaxLevel() int32 {
	return f.maxLevel
}

var _ Map[int, string] = (*Fat[int, string])(nil)
