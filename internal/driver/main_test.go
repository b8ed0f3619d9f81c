package driver

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// Run owns a ticker and must release it on every exit path.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
