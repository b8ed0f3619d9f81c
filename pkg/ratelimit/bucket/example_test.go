package bucket_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/vnykmshr/tokenbucket/pkg/ratelimit/bucket"
)

// manualClock is a minimal controllable clock for examples.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Example demonstrates that a new bucket starts empty.
func Example() {
	limiter, err := bucket.New(5, 3) // capacity 5, 3 tokens per second
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	if limiter.TryConsume() {
		fmt.Println("Consumed")
	} else {
		fmt.Println("Failed to consume")
	}

	// Output: Failed to consume
}

// Example_refill demonstrates lazy refill with an injected clock.
func Example_refill() {
	clock := &manualClock{now: time.Unix(0, 0)}
	limiter, err := bucket.NewWithConfig(bucket.Config{
		Capacity:   5,
		RefillRate: 3,
		Clock:      clock,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	clock.advance(time.Second)
	for i := 1; i <= 4; i++ {
		fmt.Printf("Attempt %d: %v\n", i, limiter.TryConsume())
	}

	// Output:
	// Attempt 1: true
	// Attempt 2: true
	// Attempt 3: true
	// Attempt 4: false
}

// Example_invalidConfiguration demonstrates construction-time validation.
func Example_invalidConfiguration() {
	_, err := bucket.New(0, 3)
	fmt.Println(err)

	// Output: bucket: invalid capacity=0 (must be positive) - value must be greater than 0
}
