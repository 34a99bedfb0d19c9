package infra

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicSequencer_StartsAtOneAndIncreases(t *testing.T) {
	s := NewSequencer()
	assert.Equal(t, uint64(0), s.Last())
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(2), s.Last())
}

func TestAtomicSequencer_NoDuplicatesUnderConcurrency(t *testing.T) {
	s := NewSequencer()
	const workers, each = 16, 500

	var mu sync.Mutex
	seen := make(map[uint64]struct{}, workers*each)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, each)
			var prev uint64
			for i := 0; i < each; i++ {
				n := s.Next()
				if n <= prev {
					t.Errorf("sequence went backwards in one goroutine: %d after %d", n, prev)
				}
				prev = n
				local = append(local, n)
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*each)
	assert.Equal(t, uint64(workers*each), s.Last())
}
