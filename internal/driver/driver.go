// Package driver repeatedly polls a limiter at a fixed interval and reports
// each attempt to a set of sinks.
package driver

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	tbcontext "github.com/vnykmshr/tokenbucket/pkg/common/context"
	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
	"github.com/vnykmshr/tokenbucket/pkg/common/validation"
	"github.com/vnykmshr/tokenbucket/pkg/metrics"
	"github.com/vnykmshr/tokenbucket/pkg/ratelimit/bucket"
)

// Config controls the polling loop.
type Config struct {
	// Interval between attempts.
	Interval time.Duration

	// MaxAttempts stops Run after this many attempts. Zero means unbounded.
	MaxAttempts int64
}

// Driver polls a limiter. Run must not be called concurrently with itself.
type Driver struct {
	limiter bucket.Limiter
	config  Config
	clock   bucket.Clock
	logger  *zap.Logger
	sinks   []Sink
	metrics *metrics.Registry
	stats   Stats
	seq     atomic.Int64
}

// Option configures a Driver.
type Option func(*Driver)

// WithSinks appends sinks that receive every attempt.
func WithSinks(sinks ...Sink) Option {
	return func(d *Driver) {
		d.sinks = append(d.sinks, sinks...)
	}
}

// WithLogger sets the logger used for lifecycle and sink failures.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithMetrics counts sink failures in registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(d *Driver) {
		d.metrics = registry
	}
}

// WithClock sets the clock used to timestamp attempts.
func WithClock(clock bucket.Clock) Option {
	return func(d *Driver) {
		d.clock = clock
	}
}

// New creates a Driver for limiter.
func New(limiter bucket.Limiter, config Config, opts ...Option) (*Driver, error) {
	if limiter == nil {
		return nil, tberrors.NewValidationError("driver", "limiter", nil, "cannot be nil").
			WithHint("provide a bucket.Limiter")
	}
	if err := validation.ValidatePositiveDuration("driver", "interval", config.Interval); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("driver", "max_attempts", config.MaxAttempts); err != nil {
		return nil, err
	}

	d := &Driver{
		limiter: limiter,
		config:  config,
		clock:   bucket.SystemClock{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run makes one attempt immediately and then one per interval until
// MaxAttempts is reached (returning nil) or ctx is done (returning ctx.Err()).
func (d *Driver) Run(ctx context.Context) error {
	if tbcontext.IsCanceled(ctx) {
		return ctx.Err()
	}

	d.logger.Info("driver started",
		zap.Int64("capacity", d.limiter.Capacity()),
		zap.Int64("refill_rate", d.limiter.RefillRate()),
		zap.Duration("interval", d.config.Interval),
		zap.Int64("max_attempts", d.config.MaxAttempts),
	)

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		a := d.Step(ctx)
		if d.config.MaxAttempts > 0 && a.Seq >= d.config.MaxAttempts {
			d.logger.Info("driver finished", zap.Int64("attempts", a.Seq))
			return nil
		}

		select {
		case <-ctx.Done():
			d.logger.Info("driver stopped", zap.Int64("attempts", a.Seq), zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step makes a single attempt, records it and delivers it to every sink.
func (d *Driver) Step(ctx context.Context) Attempt {
	a := Attempt{
		Consumed: d.limiter.TryConsume(),
		At:       d.clock.Now(),
		Seq:      d.seq.Add(1),
	}
	d.stats.Record(a)

	for _, sink := range d.sinks {
		if err := sink.Record(ctx, a); err != nil {
			d.logger.Warn("sink failed to record attempt",
				zap.String("sink", sink.Name()),
				zap.Int64("attempt", a.Seq),
				zap.Error(err),
			)
			if d.metrics != nil {
				d.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			}
		}
	}
	return a
}

// Stats returns a snapshot of the attempts made so far.
func (d *Driver) Stats() Snapshot {
	return d.stats.Snapshot()
}
