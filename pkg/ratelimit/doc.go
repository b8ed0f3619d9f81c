/*
Package ratelimit provides rate limiting primitives for Go applications.

  - bucket: Token bucket rate limiter with burst capacity

A token bucket admits short bursts up to its capacity and sustains its refill
rate over the long run:

	limiter, _ := bucket.New(5, 3) // capacity 5, 3 tokens/sec
	if limiter.TryConsume() {
		// Process request
	} else {
		// Reject; the limiter never queues or blocks
	}

Limiters are safe for concurrent use and keep all state in-process.
*/
package ratelimit
