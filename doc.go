/*
Package tokenbucket provides a lazily refilled token bucket rate limiter with
immediate admit/reject semantics, plus a small demo driver.

Rate Limiting (pkg/ratelimit):
  - bucket: Token bucket with fixed capacity and integer refill rate

Supporting packages:
  - pkg/metrics: Prometheus instrumentation
  - pkg/common/errors: Validation and operation errors
  - pkg/common/validation: Configuration checks

The bucketdemo command (cmd/bucketdemo) polls a bucket at a fixed interval,
logs each attempt, renders periodic summaries and exposes metrics.

Example usage:

	import "github.com/vnykmshr/tokenbucket/pkg/ratelimit/bucket"

	limiter, err := bucket.New(5, 3) // capacity 5, 3 tokens/sec
	if err != nil {
		log.Fatal(err)
	}

	if limiter.TryConsume() {
		handle(req)
	}
*/
package tokenbucket
