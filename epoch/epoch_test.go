package epoch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_ReclaimsOnceUnpinned(t *testing.T) {
	m := NewManager()
	g := m.Enter()

	freed := false
	m.Retire(func() { freed = true })
	require.False(t, freed, "must not reclaim while a guard predating retirement is pinned")

	g.Exit()
	m.Retire(func() {}) // triggers another drain pass
	require.True(t, freed)
}

func TestManager_ConcurrentGuards(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	var freedCount int
	var mu sync.Mutex

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := m.Enter()
			defer g.Exit()
			m.Retire(func() {
				mu.Lock()
				freedCount++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	// Drain whatever is left once every guard has exited.
	m.Retire(func() {
		mu.Lock()
		freedCount++
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 51, freedCount)
}
