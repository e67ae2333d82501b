package debug

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// DebugHeader prints debug header if debugging is enabled
func DebugHeader(enabled bool) {
	if enabled {
		log.Printf("=== DEBUG START ===")
	}
}

// DebugFooter prints debug footer if debugging is enabled
func DebugFooter(enabled bool) {
	if enabled {
		log.Printf("=== DEBUG END ===")
	}
}

// DebugOutput prints debug output if debugging is enabled
func DebugOutput(enabled bool, format string, args ...interface{}) {
	if enabled {
		timestamp := time.Now().Format("15:04:05.000")
		message := fmt.Sprintf(format, args...)
		log.Printf("[%s] %s", timestamp, message)
	}
}

// DebugTiming measures and logs execution time if debugging is enabled
func DebugTiming(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}
	
	start := time.Now()
	DebugOutput(enabled, "Starting: %s", operation)
	
	return func() {
		duration := time.Since(start)
		DebugOutput(enabled, "Completed: %s (took %v)", operation, duration)
	}
}

// Counters tallies per-reason drop counts for DataError records, e.g.
// "houses: residents_count out of range". Safe for concurrent use even
// though the pipeline itself is single-threaded, since a counter may
// be shared with a status server reading it mid-run.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Inc increments the counter for reason by one.
func (c *Counters) Inc(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[reason]++
}

// Snapshot returns a copy of the current counts.
func (c *Counters) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Total returns the sum of all counter values.
func (c *Counters) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, v := range c.counts {
		total += v
	}
	return total
}