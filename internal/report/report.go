// Package report periodically renders a summary table of driver attempts.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vnykmshr/tokenbucket/internal/driver"
	tberrors "github.com/vnykmshr/tokenbucket/pkg/common/errors"
	"github.com/vnykmshr/tokenbucket/pkg/ratelimit/bucket"
)

// Schedules accept an optional leading seconds field plus the @every and
// @hourly style descriptors.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// StatsSource supplies the snapshot to render.
type StatsSource interface {
	Stats() driver.Snapshot
}

// Reporter renders a summary table on a cron schedule.
type Reporter struct {
	source  StatsSource
	limiter bucket.Limiter
	out     io.Writer
	cron    *cron.Cron
	logger  *zap.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a Reporter. schedule is validated immediately.
func New(schedule string, source StatsSource, limiter bucket.Limiter, out io.Writer, logger *zap.Logger) (*Reporter, error) {
	if _, err := parser.Parse(schedule); err != nil {
		return nil, tberrors.NewValidationError("report", "schedule", schedule, err.Error()).
			WithHint(`use a cron expression or a descriptor such as "@every 5s"`)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	r := &Reporter{
		source:  source,
		limiter: limiter,
		out:     out,
		logger:  logger,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
	if _, err := r.cron.AddFunc(schedule, r.Report); err != nil {
		return nil, tberrors.NewOperationError("report", "New", err)
	}
	return r, nil
}

// Start begins rendering on schedule. Starting twice is a no-op; starting
// after Stop returns ErrClosed.
func (r *Reporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return tberrors.NewOperationError("report", "Start", tberrors.ErrClosed).
			WithContext("reporter already stopped")
	}
	if r.started {
		return nil
	}
	r.started = true
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running render to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	<-r.cron.Stop().Done()
}

// Next returns the next scheduled render time, or the zero time if the
// reporter is not running.
func (r *Reporter) Next() time.Time {
	r.mu.Lock()
	running := r.started && !r.stopped
	r.mu.Unlock()
	if !running {
		return time.Time{}
	}

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Report renders the current snapshot once.
func (r *Reporter) Report() {
	Render(r.out, r.source.Stats(), r.limiter)
	r.logger.Debug("summary rendered")
}

// Render writes a summary table of snap, including the limiter shape when
// limiter is not nil.
func Render(out io.Writer, snap driver.Snapshot, limiter bucket.Limiter) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Token bucket attempts")
	t.AppendHeader(table.Row{"Metric", "Value"})

	if limiter != nil {
		t.AppendRow(table.Row{"Capacity", limiter.Capacity()})
		t.AppendRow(table.Row{"Refill rate (tokens/s)", limiter.RefillRate()})
		t.AppendRow(table.Row{"Tokens available", limiter.Tokens()})
		t.AppendSeparator()
	}

	t.AppendRow(table.Row{"Attempts", snap.Attempts})
	t.AppendRow(table.Row{"Consumed", snap.Consumed})
	t.AppendRow(table.Row{"Failed to consume", snap.Rejected})
	t.AppendRow(table.Row{"Admission ratio", fmt.Sprintf("%.1f%%", snap.AdmissionRatio()*100)})
	t.AppendRow(table.Row{"Window", snap.Window().Round(time.Millisecond)})
	t.Render()
}
