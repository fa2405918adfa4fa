package list

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocked_ConcreteScenarios(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, string]()
	require.True(t, l.Insert(10, "ten"))
	require.True(t, l.Insert(20, "twenty"))
	require.True(t, l.Insert(5, "five"))

	v, ok := l.Search(10)
	require.True(t, ok)
	require.Equal(t, "ten", v)

	v, ok = l.Search(5)
	require.True(t, ok)
	require.Equal(t, "five", v)

	v, ok = l.Search(20)
	require.True(t, ok)
	require.Equal(t, "twenty", v)

	_, ok = l.Search(15)
	require.False(t, ok)

	require.True(t, l.Remove(10))
	_, ok = l.Search(10)
	require.False(t, ok)
	require.False(t, l.Remove(10))
}

func TestLocked_InsertOnExistingKeyNeverOverwrites(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, string]()
	require.True(t, l.Insert(100, "100"))
	require.False(t, l.Insert(100, "101"))

	v, ok := l.Search(100)
	require.True(t, ok)
	require.Equal(t, "100", v, "Locked keeps the first value on duplicate insert")
}

func TestLocked_EmptyList(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, string]()
	require.False(t, l.Remove(50))
	_, ok := l.Search(50)
	require.False(t, ok)
}

func TestLocked_InsertRemoveBoundaryKeys(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, string]()
	require.True(t, l.Insert(0, "0"))
	require.True(t, l.Insert(1000, "1000"))
	require.True(t, l.Remove(0))
	require.True(t, l.Remove(1000))

	_, ok := l.Search(0)
	require.False(t, ok)
	_, ok = l.Search(1000)
	require.False(t, ok)
}

func TestLocked_ForEachYieldsSortedKeys(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, int]()
	seenKeys := map[int]struct{}{}
	for len(seenKeys) < 10_000 {
		k := rand.Intn(20_000)
		l.Insert(k, k)
		seenKeys[k] = struct{}{}
	}

	var got []int
	l.ForEach(func(key int, val int) {
		got = append(got, key)
	})

	require.True(t, sort.IntsAreSorted(got))
	require.Equal(t, len(seenKeys), l.Len())
}

func TestLocked_LevelNeverExceedsMax(t *testing.T) {
	t.Parallel()

	const maxLevel = 8
	l := NewLocked[int, int](WithMaxLevel[int, int](maxLevel))
	for i := 0; i < 5000; i++ {
		l.Insert(i, i)
	}

	n := l.header.atomicLoadForward(0)
	for n != l.tail {
		require.LessOrEqual(t, n.level, int32(maxLevel))
		n = n.atomicLoadForward(0)
	}
}

func TestLocked_NativeMutexOption(t *testing.T) {
	t.Parallel()

	l := NewLocked[int, string](WithNativeMutex[int, string]())
	require.True(t, l.Insert(1, "a"))
	v, ok := l.Search(1)
	require.True(t, ok)
	require.Equal(t, "a", v)
}
