package list

import "github.com/skl-go/skiplist/lib/infra"

type fatNode[K infra.OrderedKey, V any] struct {
	key     K
	val     V
	forward []*fatNode[K, V]
}

func newFatNode[K infra.OrderedKey, V any](key K, val V, level int32) *fatNode[K, V] {
	return &fatNode[K, V]{
		key:     key,
		val:     val,
		forward: make([]*fatNode[K, V], level+1),
	}
}
