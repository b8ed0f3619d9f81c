/*
Package bucket provides a token bucket rate limiter with immediate admit/reject
semantics.

A TokenBucket holds at most Capacity tokens and earns RefillRate tokens per
second of elapsed time. Each successful TryConsume spends exactly one token.
The bucket starts empty, so the first token is available only after
1/RefillRate seconds.

Basic usage:

	limiter, err := bucket.New(5, 3) // capacity 5, 3 tokens/sec
	if err != nil {
		log.Fatal(err)
	}

	if limiter.TryConsume() {
		// proceed
	} else {
		// reject; nothing is queued
	}

Refill is lazy: no timer or goroutine runs in the background. Each TryConsume
computes the whole tokens earned since the last refill using integer
arithmetic truncated toward zero. When less than one whole token has been
earned the refill timestamp is left untouched, so partial intervals keep
accumulating instead of being discarded.

Time is read from a Clock. SystemClock uses the monotonic reading carried by
time.Now. Tests can inject a controllable clock:

	limiter, err := bucket.NewWithConfig(bucket.Config{
		Capacity:   5,
		RefillRate: 3,
		Clock:      mockClock,
	})

Refill arithmetic saturates at Capacity, so very long idle periods or very
large rates never overflow.

Prometheus instrumentation is available through NewWithMetrics and
NewWithConfigAndMetrics.

Thread Safety:

All methods are safe for concurrent use. Refill, check and decrement happen
under a single mutex per bucket; with K tokens available and no further
refill, exactly K concurrent TryConsume calls succeed.
*/
package bucket
