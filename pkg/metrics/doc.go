// Package metrics provides Prometheus instrumentation for tokenbucket components.
//
// # Overview
//
// The metrics package instruments:
//   - Rate limiting decisions (requests, allowed, denied)
//   - Bucket state (tokens available, configured capacity)
//   - Demo driver sinks (failed attempt deliveries)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	limiter, err := bucket.NewWithMetrics(5, 3, "api_requests")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":9090", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  registry,
//		Namespace: "edge",
//	}
//
//	limiter, err := bucket.NewWithConfigAndMetrics(
//		bucket.Config{Capacity: 10, RefillRate: 5},
//		"custom_limiter",
//		config,
//	)
//
// # Available Metrics
//
//   - tokenbucket_ratelimit_requests_total: Total number of rate limit requests
//   - tokenbucket_ratelimit_allowed_total: Total number of allowed requests
//   - tokenbucket_ratelimit_denied_total: Total number of denied requests
//   - tokenbucket_ratelimit_tokens_available: Number of tokens currently available
//   - tokenbucket_ratelimit_capacity: Maximum number of tokens the limiter can hold
//   - tokenbucket_driver_sink_errors_total: Attempt events a sink failed to record
//
// Rate limit metrics carry the labels limiter_type and limiter_name.
package metrics
