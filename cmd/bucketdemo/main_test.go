package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vnykmshr/tokenbucket/internal/testutil"
	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, cfg.Bucket.Capacity, int64(5))
	testutil.AssertEqual(t, cfg.Bucket.RefillRate, int64(3))
	testutil.AssertEqual(t, cfg.Driver.Interval, 100*time.Millisecond)
	testutil.AssertEqual(t, cfg.Driver.MaxAttempts, int64(0))
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	testutil.AssertNoError(t, os.WriteFile(path, []byte(`
bucket: {capacity: 10, refill_rate: 4}
driver: {interval: 1s, max_attempts: 50}
`), 0o600))

	cfg, err := loadConfig([]string{"-config", path, "-rate", "7", "-attempts", "0", "-log-level", "debug"})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, cfg.Bucket.Capacity, int64(10))
	testutil.AssertEqual(t, cfg.Bucket.RefillRate, int64(7))
	testutil.AssertEqual(t, cfg.Driver.Interval, time.Second)
	testutil.AssertEqual(t, cfg.Driver.MaxAttempts, int64(0))
	testutil.AssertEqual(t, cfg.Log.Level, "debug")
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	_, err := loadConfig([]string{"-capacity", "-2"})
	if !tberrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestRunBoundedWithoutSideServices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	testutil.AssertNoError(t, os.WriteFile(path, []byte(`
driver: {interval: 1ms, max_attempts: 5}
log: {level: error}
metrics: {enabled: false}
report: {enabled: false}
`), 0o600))

	testutil.AssertNoError(t, run([]string{"-config", path}))
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingRedis(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:6379: connection refused")
	blocking := pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		pinger  pinger
		timeout time.Duration
		wantErr error
		wantMsg string
	}{
		{
			name:    "answers",
			ctx:     context.Background(),
			pinger:  pingFunc(func(context.Context) error { return nil }),
			timeout: time.Second,
		},
		{
			name:    "refused",
			ctx:     context.Background(),
			pinger:  pingFunc(func(context.Context) error { return refused }),
			timeout: time.Second,
			wantErr: refused,
			wantMsg: "connect to redis at localhost:6379",
		},
		{
			name:    "no answer before timeout",
			ctx:     context.Background(),
			pinger:  blocking,
			timeout: 10 * time.Millisecond,
			wantErr: context.DeadlineExceeded,
			wantMsg: "redis at localhost:6379 did not answer within 10ms",
		},
		{
			name:    "shutdown during ping",
			ctx:     canceled,
			pinger:  blocking,
			timeout: 0,
			wantErr: context.Canceled,
			wantMsg: "connect to redis at localhost:6379",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pingRedis(tt.ctx, tt.pinger, "localhost:6379", tt.timeout)
			if tt.wantErr == nil {
				testutil.AssertNoError(t, err)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("pingRedis() = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("pingRedis() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
