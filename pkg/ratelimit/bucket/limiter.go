package bucket

import (
	"sync"
	"time"

	"github.com/vnykmshr/tokenbucket/pkg/common/validation"
)

// Limiter decides, on each call, whether an action may proceed now.
// It never blocks and never queues.
type Limiter interface {
	// TryConsume takes one token if available and reports whether it did.
	TryConsume() bool

	// Tokens returns the number of tokens that would be available now.
	Tokens() int64

	// Capacity returns the maximum number of tokens the limiter can hold.
	Capacity() int64

	// RefillRate returns the number of tokens added per second.
	RefillRate() int64
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time. The values returned by
// time.Now carry a monotonic reading, so elapsed time is unaffected by wall
// clock adjustments.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds configuration options for creating a new TokenBucket.
type Config struct {
	// Capacity is the maximum number of tokens that can be stored.
	Capacity int64

	// RefillRate is the number of tokens added per second.
	RefillRate int64

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock
}

// TokenBucket is a lazily refilled token bucket. The bucket starts empty and
// earns RefillRate tokens per second up to Capacity. It is safe for
// concurrent use.
type TokenBucket struct {
	capacity   int64
	refillRate int64
	clock      Clock

	mu         sync.Mutex
	tokens     int64
	lastRefill time.Time
}

var _ Limiter = (*TokenBucket)(nil)

// New creates an empty token bucket holding at most capacity tokens and
// refilling at refillRate tokens per second.
func New(capacity, refillRate int64) (*TokenBucket, error) {
	return NewWithConfig(Config{
		Capacity:   capacity,
		RefillRate: refillRate,
		Clock:      SystemClock{},
	})
}

// NewWithConfig creates an empty token bucket from config. Non-positive
// capacity or refill rate is rejected with a *errors.ValidationError.
func NewWithConfig(config Config) (*TokenBucket, error) {
	if err := validation.ValidatePositive("bucket", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("bucket", "refill_rate", config.RefillRate); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	return &TokenBucket{
		capacity:   config.Capacity,
		refillRate: config.RefillRate,
		clock:      config.Clock,
		tokens:     0,
		lastRefill: config.Clock.Now(),
	}, nil
}
