package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelGenerator_Bounds(t *testing.T) {
	t.Parallel()

	g := newLevelGenerator(16, 0.5)
	for i := 0; i < 10_000; i++ {
		level := g.randomLevel()
		require.GreaterOrEqual(t, level, int32(0))
		require.LessOrEqual(t, level, int32(16))
	}
}

func TestLevelGenerator_ZeroProbabilityNeverClimbs(t *testing.T) {
	t.Parallel()

	g := newLevelGenerator(16, 0)
	for i := 0; i < 100; i++ {
		require.Equal(t, int32(0), g.randomLevel())
	}
}

func TestLevelGenerator_ConcurrentCallers(t *testing.T) {
	t.Parallel()

	g := newLevelGenerator(16, 0.5)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 1000; j++ {
				level := g.randomLevel()
				assert.GreaterOrEqual(t, level, int32(0))
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
