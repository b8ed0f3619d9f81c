package driver

import (
	"fmt"
	"sync"
	"time"
)

// Attempt is the outcome of one TryConsume call made by the driver.
type Attempt struct {
	Seq      int64     `json:"seq"`
	At       time.Time `json:"at"`
	Consumed bool      `json:"consumed"`
}

func (a Attempt) String() string {
	if a.Consumed {
		return fmt.Sprintf("Attempt %d: Consumed", a.Seq)
	}
	return fmt.Sprintf("Attempt %d: Failed to consume", a.Seq)
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Attempts int64
	Consumed int64
	Rejected int64
	First    time.Time
	Last     time.Time
}

// AdmissionRatio returns Consumed/Attempts, or 0 before the first attempt.
func (s Snapshot) AdmissionRatio() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Consumed) / float64(s.Attempts)
}

// Window returns the time between the first and last attempt.
func (s Snapshot) Window() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.Last.Sub(s.First)
}

// Stats accumulates attempt outcomes. It is safe for concurrent use.
type Stats struct {
	mu   sync.Mutex
	snap Snapshot
}

// Record adds one attempt.
func (s *Stats) Record(a Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Attempts == 0 {
		s.snap.First = a.At
	}
	s.snap.Attempts++
	if a.Consumed {
		s.snap.Consumed++
	} else {
		s.snap.Rejected++
	}
	s.snap.Last = a.At
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
