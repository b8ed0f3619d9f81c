package report

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// The cron scheduler runs its own goroutine between Start and Stop.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
