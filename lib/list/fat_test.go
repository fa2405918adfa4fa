package list

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFat_ConcreteScenarios(t *testing.T) {
	t.Parallel()

	f := NewFat[int, string]()
	require.True(t, f.Insert(10, "ten"))
	require.True(t, f.Insert(20, "twenty"))
	require.True(t, f.Insert(5, "five"))

	v, ok := f.Search(10)
	require.True(t, ok)
	require.Equal(t, "ten", v)

	v, ok = f.Search(5)
	require.True(t, ok)
	require.Equal(t, "five", v)

	v, ok = f.Search(20)
	require.True(t, ok)
	require.Equal(t, "twenty", v)

	_, ok = f.Search(15)
	require.False(t, ok)

	require.True(t, f.Remove(10))
	_, ok = f.Search(10)
	require.False(t, ok)
	require.False(t, f.Remove(10))
}

func TestFat_InsertOnExistingKeyOverwritesButReturnsFalse(t *testing.T) {
	t.Parallel()

	f := NewFat[int, string]()
	require.True(t, f.Insert(100, "100"))
	require.False(t, f.Insert(100, "101"))

	v, ok := f.Search(100)
	require.True(t, ok)
	require.Equal(t, "101", v, "Fat overwrites on duplicate insert, unlike Locked")
}

func TestFat_EmptyList(t *testing.T) {
	t.Parallel()

	f := NewFat[int, string]()
	require.False(t, f.Remove(50))
	_, ok := f.Search(50)
	require.False(t, ok)
}

func TestFat_InsertRemoveBoundaryKeys(t *testing.T) {
	t.Parallel()

	f := NewFat[int, string]()
	require.True(t, f.Insert(0, "0"))
	require.True(t, f.Insert(1000, "1000"))
	require.True(t, f.Remove(0))
	require.True(t, f.Remove(1000))

	_, ok := f.Search(0)
	require.False(t, ok)
	_, ok = f.Search(1000)
	require.False(t, ok)
}

func TestFat_ForEachYieldsSortedKeys(t *testing.T) {
	t.Parallel()

	f := NewFat[int, int]()
	keys := []int{42, 7, 19, 3, 88, 1, 0, 56}
	for _, k := range keys {
		f.Insert(k, k)
	}

	var seen []int
	f.ForEach(func(key int, val int) {
		seen = append(seen, key)
	})

	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)
	require.Equal(t, sorted, seen)
	require.Equal(t, len(keys), f.Len())
}

func TestFat_DumpDoesNotPanicOnEmptyOrFull(t *testing.T) {
	t.Parallel()

	f := NewFat[int, string]()
	require.NotPanics(t, func() { f.Dump() })
	f.Insert(1, "a")
	require.NotPanics(t, func() { f.Dump() })
}
