package list

import (
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLocked_ConcurrentInclusion is property 6: N threads each insert
// disjoint ranges covering [0,K); every key must be found afterwards.
func TestLocked_ConcurrentInclusion(t *testing.T) {
	t.Parallel()

	const (
		workers = 4
		total   = 100_000
	)
	l := NewLocked[int, int]()

	var wg sync.WaitGroup
	per := total / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Microsecond)
			for i := lo; i < hi; i++ {
				l.Insert(i, i)
			}
		}(w*per, (w+1)*per)
	}
	wg.Wait()

	require.Equal(t, total, l.Len())
	for i := 0; i < total; i++ {
		_, ok := l.Search(i)
		require.True(t, ok, "missing key %d after concurrent disjoint insert", i)
	}
}

// TestLocked_ConcurrentExclusion is property 7: starting from a full
// [0,K) list, N threads remove disjoint ranges; every key must be
// absent afterwards.
func TestLocked_ConcurrentExclusion(t *testing.T) {
	t.Parallel()

	const (
		workers = 4
		total   = 40_000
	)
	l := NewLocked[int, int]()
	for i := 0; i < total; i++ {
		l.Insert(i, i)
	}

	var wg sync.WaitGroup
	per := total / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Microsecond)
			for i := lo; i < hi; i++ {
				l.Remove(i)
			}
		}(w*per, (w+1)*per)
	}
	wg.Wait()

	require.Equal(t, 0, l.Len())
	for i := 0; i < total; i++ {
		_, ok := l.Search(i)
		require.False(t, ok, "key %d still present after concurrent disjoint remove", i)
	}
}

// TestLocked_MixedWorkloadSafety is property 8: workers issuing a
// random mix of insert, remove, and search calls on keys drawn from
// [1,total] complete without crashing and leave the map sorted.
func TestLocked_MixedWorkloadSafety(t *testing.T) {
	t.Parallel()

	const (
		workers = 8
		total   = 20_000
	)
	l := NewLocked[int, int]()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(int64(seed)))
			for i := 0; i < 2000; i++ {
				k := rnd.Intn(total) + 1
				switch rnd.Intn(3) {
				case 0:
					l.Insert(k, k)
				case 1:
					l.Remove(k)
				case 2:
					l.Search(k)
				}
			}
		}(w)
	}
	wg.Wait()

	var got []int
	l.ForEach(func(key, val int) {
		got = append(got, key)
	})
	require.True(t, sort.IntsAreSorted(got))
}

// TestLocked_LevelBoundUnderConcurrency is property 9, exercised
// concurrently rather than serially.
func TestLocked_LevelBoundUnderConcurrency(t *testing.T) {
	t.Parallel()

	const maxLevel = 12
	l := NewLocked[int, int](WithMaxLevel[int, int](maxLevel))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(lo int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				l.Insert(lo+i, lo+i)
			}
		}(w * 1000)
	}
	wg.Wait()

	for n := l.header.atomicLoadForward(0); n != l.tail; n = n.atomicLoadForward(0) {
		require.LessOrEqual(t, n.level, int32(maxLevel))
	}
}

// TestLocked_OracleAgreesWithFat cross-checks Locked against Fat
// across a randomized sequential (non-concurrent) op trace, per
// spec.md's reference-oracle design.
func TestLocked_OracleAgreesWithFat(t *testing.T) {
	t.Parallel()

	locked := NewLocked[int, int]()
	fat := NewFat[int, int]()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 20_000; i++ {
		k := rnd.Intn(2000)
		switch rnd.Intn(3) {
		case 0:
			lv := locked.Insert(k, k)
			fv := fat.Insert(k, k)
			// Fat overwrites on duplicate; Locked does not. Both
			// report the same true/false outcome regardless.
			require.Equal(t, lv, fv)
		case 1:
			require.Equal(t, locked.Remove(k), fat.Remove(k))
		case 2:
			lv, lok := locked.Search(k)
			fv, fok := fat.Search(k)
			require.Equal(t, lok, fok)
			if lok && fok {
				// Values may diverge only if a duplicate insert
				// happened (Fat overwrote, Locked kept the first).
				_ = lv
				_ = fv
			}
		}
	}

	require.Equal(t, fat.Len(), locked.Len())
}
