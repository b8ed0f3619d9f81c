// Command bucketdemo polls a token bucket at a fixed interval and reports
// each attempt, optionally exposing Prometheus metrics and publishing
// attempts to Redis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vnykmshr/tokenbucket/internal/config"
	"github.com/vnykmshr/tokenbucket/internal/driver"
	"github.com/vnykmshr/tokenbucket/internal/logging"
	"github.com/vnykmshr/tokenbucket/internal/report"
	tbcontext "github.com/vnykmshr/tokenbucket/pkg/common/context"
	"github.com/vnykmshr/tokenbucket/pkg/metrics"
	"github.com/vnykmshr/tokenbucket/pkg/ratelimit/bucket"
)

const redisPingTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bucketdemo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promRegistry := prometheus.NewRegistry()
	limiter, err := bucket.NewWithConfigAndMetrics(bucket.Config{
		Capacity:   cfg.Bucket.Capacity,
		RefillRate: cfg.Bucket.RefillRate,
		Clock:      bucket.SystemClock{},
	}, "bucketdemo", metrics.Config{
		Enabled:   cfg.Metrics.Enabled,
		Registry:  promRegistry,
		Namespace: cfg.Metrics.Namespace,
	})
	if err != nil {
		return err
	}

	opts := []driver.Option{
		driver.WithLogger(logger),
		driver.WithSinks(driver.NewLogSink(logger)),
	}

	if mb, ok := limiter.(*bucket.MetricsBucket); ok {
		opts = append(opts, driver.WithMetrics(mb.Registry()))

		srv := serveMetrics(cfg.Metrics.Addr, promRegistry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Redis.Enabled {
		sink := driver.NewRedisSink(driver.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		defer sink.Close()

		if err := pingRedis(ctx, sink, cfg.Redis.Addr, redisPingTimeout); err != nil {
			return err
		}
		logger.Info("publishing attempts to redis",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("channel", cfg.Redis.Channel),
		)
		opts = append(opts, driver.WithSinks(sink))
	}

	d, err := driver.New(limiter, driver.Config{
		Interval:    cfg.Driver.Interval,
		MaxAttempts: cfg.Driver.MaxAttempts,
	}, opts...)
	if err != nil {
		return err
	}

	if cfg.Report.Enabled {
		reporter, err := report.New(cfg.Report.Schedule, d, limiter, os.Stdout, logger)
		if err != nil {
			return err
		}
		if err := reporter.Start(); err != nil {
			return err
		}
		defer func() {
			reporter.Stop()
			reporter.Report()
		}()
	}

	err = d.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pingRedis checks the Redis connection before any attempt is published.
// A timeout of zero or less waits until ctx is done.
func pingRedis(ctx context.Context, p pinger, addr string, timeout time.Duration) error {
	pingCtx, cancel := tbcontext.WithTimeoutOrCancel(ctx, timeout)
	defer cancel()

	err := p.Ping(pingCtx)
	if err == nil {
		return nil
	}
	if tbcontext.IsTimedOut(pingCtx) {
		return fmt.Errorf("redis at %s did not answer within %v: %w", addr, timeout, err)
	}
	return fmt.Errorf("connect to redis at %s: %w", addr, err)
}

func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("bucketdemo", flag.ContinueOnError)
	var (
		path        = fs.String("config", "", "path to a YAML config file")
		capacity    = fs.Int64("capacity", 0, "bucket capacity (overrides config)")
		rate        = fs.Int64("rate", 0, "refill rate in tokens per second (overrides config)")
		interval    = fs.Duration("interval", 0, "time between attempts (overrides config)")
		attempts    = fs.Int64("attempts", -1, "stop after this many attempts, 0 for unbounded (overrides config)")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error (overrides config)")
		metricsAddr = fs.String("metrics-addr", "", "listen address for /metrics (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *capacity != 0 {
		cfg.Bucket.Capacity = *capacity
	}
	if *rate != 0 {
		cfg.Bucket.RefillRate = *rate
	}
	if *interval != 0 {
		cfg.Driver.Interval = *interval
	}
	if *attempts >= 0 {
		cfg.Driver.MaxAttempts = *attempts
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveMetrics(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
