// Package list provides an ordered in-memory key-value index built on
// a probabilistic skip list. Locked is the concurrent, lock-coupling
// implementation; Fat is a single-mutex reference implementation used
// to cross-check Locked's externally visible behaviour.
package list

import "github.com/skl-go/skiplist/lib/infra"

// Map is the ordered-map contract both skip list variants satisfy.
type Map[K infra.OrderedKey, V any] interface {
	// Insert adds k with value v, returning true if it was absent.
	// On a present key Insert returns false; Locked leaves the stored
	// value untouched, while Fat overwrites it with v.
	Insert(key K, val V) bool
	// Remove logically deletes k, returning true if it was present.
	Remove(key K) bool
	// Search returns the value stored for k and whether it was found.
	Search(key K) (V, bool)
	// ForEach visits every live entry in ascending key order. The
	// visitor must not mutate the map.
	ForEach(visit func(key K, val V))
	// Dump renders a diagnostic, per-level view of the list.
	Dump() string
	// Len returns the number of entries currently in the map.
	Len() int
	// MaxLevel returns the configured maximum tower height.
	MaxLevel() int32
}
