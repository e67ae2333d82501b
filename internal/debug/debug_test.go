package debug

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters_IncAndSnapshot(t *testing.T) {
	c := NewCounters()
	c.Inc("invalid_residents_count")
	c.Inc("invalid_residents_count")
	c.Inc("invalid_floors_count")

	snap := c.Snapshot()
	assert.Equal(t, 2, snap["invalid_residents_count"])
	assert.Equal(t, 1, snap["invalid_floors_count"])
	assert.Equal(t, 3, c.Total())
}

func TestCounters_ConcurrentIncIsSafe(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc("inactive")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Total())
}
