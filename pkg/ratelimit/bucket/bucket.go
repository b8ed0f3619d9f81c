package bucket

import (
	"math/bits"
	"time"
)

// TryConsume refills the bucket for the time elapsed since the last refill,
// then takes one token if any is available. The whole sequence runs under the
// bucket lock, so concurrent callers never spend the same token twice.
func (tb *TokenBucket) TryConsume() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Tokens returns the number of tokens that would be available if the bucket
// were refilled now. It does not modify the bucket.
func (tb *TokenBucket) Tokens() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	earned := tb.earned(tb.clock.Now())
	return tb.tokens + min(earned, tb.capacity-tb.tokens)
}

// Capacity returns the maximum number of tokens the bucket can hold.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// RefillRate returns the number of tokens added per second.
func (tb *TokenBucket) RefillRate() int64 {
	return tb.refillRate
}

// refill adds the whole tokens earned since lastRefill. When less than one
// token has been earned, lastRefill stays put so the partial interval keeps
// accumulating. Caller must hold tb.mu.
func (tb *TokenBucket) refill(now time.Time) {
	earned := tb.earned(now)
	if earned == 0 {
		return
	}

	tb.tokens += min(earned, tb.capacity-tb.tokens)
	tb.lastRefill = now
}

// earned returns floor(elapsed * refillRate / 1s), saturated at capacity.
// A clock that has not advanced, or has gone backwards, earns nothing.
func (tb *TokenBucket) earned(now time.Time) int64 {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(elapsed), uint64(tb.refillRate))
	if hi >= uint64(time.Second) {
		// quotient would not fit in 64 bits
		return tb.capacity
	}
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	if q >= uint64(tb.capacity) {
		return tb.capacity
	}
	return int64(q)
}
