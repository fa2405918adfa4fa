package list

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/skl-go/skiplist/epoch"
	"github.com/skl-go/skiplist/lib/infra"
	"github.com/skl-go/skiplist/metrics"
)

// Locked is the concurrent, lock-coupling skip list: per-node mutexes
// plus the marked/fullyLinked atomic pair coordinate insert, remove,
// and lock-free search without ever taking a list-wide lock. It never
// overwrites the value of an existing key — Insert on a present key
// always returns false, unlike Fat.
type Locked[K infra.OrderedKey, V any] struct {
	header      *lockedNode[K, V]
	tail        *lockedNode[K, V]
	maxLevel    int32
	probability float64
	mutexKind   mutexEnum
	gen         *levelGenerator
	id          monotonicNonZeroID
	length      atomic.Int64
	guards      *epoch.Manager
	recorder    *metrics.Recorder
}

// NewLocked builds a Locked list. Default maxLevel is 16, default
// probability is 0.5, default per-node lock is a spin lock (use
// WithNativeMutex for sync.Mutex instead).
func NewLocked[K infra.OrderedKey, V any](opts ...Option[K, V]) *Locked[K, V] {
	o := &listOptions[K, V]{}
	for _, opt := range opts {
		opt.apply(o)
	}
	o.loadOrDefault()

	tail := newLockedTail[K, V](o.mutex)
	header := newLockedHead[K, V](o.maxLevel, o.mutex)
	for lvl := int32(0); lvl <= o.maxLevel; lvl++ {
		header.atomicStoreForward(lvl, tail)
	}

	return &Locked[K, V]{
		header:      header,
		tail:        tail,
		maxLevel:    o.maxLevel,
		probability: o.probability,
		mutexKind:   o.mutex,
		gen:         newLevelGenerator(o.maxLevel, o.probability),
		guards:      epoch.NewManager(),
		recorder:    o.recorder,
	}
}

// find produces a predecessor/successor hypothesis at every level
// without consulting marked or fullyLinked: it is lock-free and its
// output must be validated under lock before any mutation acts on it.
func (l *Locked[K, V]) find(key K, preds, succs []*lockedNode[K, V]) int32 {
	foundLevel := int32(-1)
	pred := l.header
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.atomicLoadForward(level)
		for curr != l.tail && curr.key < key {
			pred = curr
			curr = pred.atomicLoadForward(level)
		}
		if foundLevel == -1 && curr != l.tail && curr.key == key {
			foundLevel = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return foundLevel
}

func (l *Locked[K, V]) Search(key K) (V, bool) {
	start := time.Now()
	outcome := metrics.OutcomeNotFound
	defer func() { l.recorder.Observe(context.Background(), "search", outcome, time.Since(start)) }()

	g := l.guards.Enter()
	defer g.Exit()

	preds := make([]*lockedNode[K, V], l.maxLevel+1)
	succs := make([]*lockedNode[K, V], l.maxLevel+1)
	foundLevel := l.find(key, preds, succs)
	if foundLevel == -1 {
		return *new(V), false
	}
	n := succs[foundLevel]
	flags := n.flags.atomicLoad()
	if flags&nodeFullyLinked != 0 && flags&nodeMarked == 0 {
		outcome = metrics.OutcomeSuccess
		return n.val, true
	}
	return *new(V), false
}

func (l *Locked[K, V]) Insert(key K, val V) bool {
	start := time.Now()
	outcome := metrics.OutcomeDuplicate
	defer func() { l.recorder.Observe(context.Background(), "insert", outcome, time.Since(start)) }()

	g := l.guards.Enter()
	defer g.Exit()

	level := l.gen.randomLevel()
	preds := make([]*lockedNode[K, V], l.maxLevel+1)
	succs := make([]*lockedNode[K, V], l.maxLevel+1)

	for {
		foundLevel := l.find(key, preds, succs)
		if foundLevel != -1 {
			n := succs[foundLevel]
			if !n.flags.atomicIsSet(nodeMarked) {
				for !n.flags.atomicIsSet(nodeFullyLinked) {
					infra.OsYield()
				}
				return false
			}
			continue // the found node is dying; re-find.
		}

		lockVersion := l.id.next()
		locked := make([]*lockedNode[K, V], 0, level+1)
		valid := true
		for lvl := int32(0); lvl <= level; lvl++ {
			pred := preds[lvl]
			succ := succs[lvl]
			if !containsNode(locked, pred) {
				pred.mu.lock(lockVersion)
				locked = append(locked, pred)
			}
			if pred.flags.atomicIsSet(nodeMarked) ||
				succ.flags.atomicIsSet(nodeMarked) ||
				pred.atomicLoadForward(lvl) != succ {
				valid = false
				break
			}
		}

		if !valid {
			unlockAll(locked, lockVersion)
			continue
		}

		newNode := newLockedNode[K, V](key, val, level, l.mutexKind)
		for lvl := int32(0); lvl <= level; lvl++ {
			newNode.atomicStoreForward(lvl, succs[lvl])
			preds[lvl].atomicStoreForward(lvl, newNode)
		}
		newNode.flags.atomicSet(nodeFullyLinked)

		unlockAll(locked, lockVersion)
		l.length.Add(1)
		outcome = metrics.OutcomeSuccess
		return true
	}
}

func (l *Locked[K, V]) Remove(key K) bool {
	start := time.Now()
	outcome := metrics.OutcomeNotFound
	defer func() { l.recorder.Observe(context.Background(), "remove", outcome, time.Since(start)) }()

	g := l.guards.Enter()
	defer g.Exit()

	preds := make([]*lockedNode[K, V], l.maxLevel+1)
	succs := make([]*lockedNode[K, V], l.maxLevel+1)

	var victim *lockedNode[K, V]
	var victimVersion uint64
	for victim == nil {
		foundLevel := l.find(key, preds, succs)
		if foundLevel == -1 {
			return false
		}
		candidate := succs[foundLevel]
		if candidate.level != foundLevel {
			// find hit a lower rung of a taller node; that node's
			// removal must be driven from its own top level.
			infra.OsYield()
			continue
		}
		if candidate.flags.atomicIsSet(nodeMarked) {
			infra.OsYield()
			continue
		}
		if !candidate.flags.atomicIsSet(nodeFullyLinked) {
			infra.OsYield()
			continue
		}

		version := l.id.next()
		candidate.mu.lock(version)
		if candidate.flags.atomicIsSet(nodeMarked) {
			candidate.mu.unlock(version)
			return false
		}
		candidate.flags.atomicSet(nodeMarked)
		victim = candidate
		victimVersion = version
	}

	for {
		l.find(key, preds, succs)

		lockVersion := l.id.next()
		locked := make([]*lockedNode[K, V], 0, victim.level+1)
		valid := true
		for lvl := int32(0); lvl <= victim.level; lvl++ {
			pred := preds[lvl]
			if !containsNode(locked, pred) {
				pred.mu.lock(lockVersion)
				locked = append(locked, pred)
			}
			if pred.flags.atomicIsSet(nodeMarked) || pred.atomicLoadForward(lvl) != victim {
				valid = false
				break
			}
		}

		if !valid {
			unlockAll(locked, lockVersion)
			continue
		}

		for lvl := victim.level; lvl >= 0; lvl-- {
			preds[lvl].atomicStoreForward(lvl, victim.atomicLoadForward(lvl))
		}

		l.guards.Retire(func() {
			for lvl := victim.level; lvl >= 0; lvl-- {
				victim.atomicStoreForward(lvl, nil)
			}
		})

		unlockAll(locked, lockVersion)
		victim.mu.unlock(victimVersion)

		l.length.Add(-1)
		outcome = metrics.OutcomeSuccess
		return true
	}
}

func (l *Locked[K, V]) ForEach(visit func(key K, val V)) {
	g := l.guards.Enter()
	defer g.Exit()

	for n := l.header.atomicLoadForward(0); n != l.tail; n = n.atomicLoadForward(0) {
		visit(n.key, n.val)
	}
}

func (l *Locked[K, V]) Dump() string {
	g := l.guards.Enter()
	defer g.Exit()

	var b strings.Builder
	for level := l.maxLevel; level >= 0; level-- {
		fmt.Fprintf(&b, "L%d:", level)
		for n := l.header.atomicLoadForward(level); n != l.tail; n = n.atomicLoadForward(level) {
			fmt.Fprintf(&b, " %v", n.key)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (l *Locked[K, V]) Len() int {
	return int(l.length.Load())
}

func (l *Locked[K, V]) MaxLevel() int32 {
	return l.maxLevel
}

func containsNode[K infra.OrderedKey, V any](nodes []*lockedNode[K, V], n *lockedNode[K, V]) bool {
	for _, existing := range nodes {
		if existing == n {
			return true
		}
	}
	return false
}

func unlockAll[K infra.OrderedKey, V any](nodes []*lockedNode[K, V], version uint64) {
	for _, n := range nodes {
		n.mu.unlock(version)
	}
}

var _ Map[int, string] = (*Locked[int, string])(nil)
