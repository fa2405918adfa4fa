package harness_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skl-go/skiplist/harness"
	"github.com/skl-go/skiplist/lib/list"
)

func TestRunner_DisjointInsertThenRemove(t *testing.T) {
	t.Parallel()

	skl := list.NewLocked[int, int]()
	r, err := harness.NewRunner(skl, 8)
	require.NoError(t, err)
	defer r.Release()

	require.NoError(t, r.DisjointInsert(0, 2000))
	require.Equal(t, 2000, skl.Len())
	for k := 0; k < 2000; k++ {
		v, ok := skl.Search(k)
		require.True(t, ok)
		require.Equal(t, k, v)
	}

	require.NoError(t, r.DisjointRemove(0, 2000))
	require.Equal(t, 0, skl.Len())
}

func TestRunner_MixedWorkloadSafety(t *testing.T) {
	t.Parallel()

	skl := list.NewLocked[int, int]()
	r, err := harness.NewRunner(skl, 16)
	require.NoError(t, err)
	defer r.Release()

	require.NoError(t, r.MixedWorkload(0, 500, 1, 1, 1, 200))

	skl.ForEach(func(key, val int) {
		assert.Equal(t, key, val)
	})
}

func TestOracle_AgreesUnderDisjointInserts(t *testing.T) {
	t.Parallel()

	locked := list.NewLocked[int, int]()
	fat := list.NewFat[int, int]()
	oracle := harness.NewOracle(locked, fat)

	ctx := context.Background()
	for k := 0; k < 200; k++ {
		require.NoError(t, oracle.Insert(ctx, k, k*2))
	}
	for k := 0; k < 100; k++ {
		require.NoError(t, oracle.Remove(ctx, k))
	}

	require.Equal(t, fat.Len(), locked.Len())
}

func TestOracle_DetectsDivergence(t *testing.T) {
	t.Parallel()

	locked := list.NewLocked[int, int]()
	fat := list.NewFat[int, int]()
	oracle := harness.NewOracle(locked, fat)

	ctx := context.Background()
	require.NoError(t, oracle.Insert(ctx, 1, 1))

	// Desync the two lists behind the oracle's back, then confirm the
	// next oracle call surfaces the mismatch rather than masking it.
	locked.Insert(2, 2)

	var divergeErr *harness.DivergedError
	err := oracle.Insert(ctx, 2, 2)
	require.Error(t, err)
	require.ErrorAs(t, err, &divergeErr)
	assert.Equal(t, "insert", divergeErr.Op)
	assert.Equal(t, 2, divergeErr.Key)
}
