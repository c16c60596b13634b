package migration

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Summary accumulates per-unit outcomes across the batch loop. Unit
// workers update the counters concurrently; everything else is written
// once by the orchestrating goroutine.
//
// Skipped units count toward neither success nor failure, so for N
// discovered units with K empty ones, Migrated+Failed == N-K.
type Summary struct {
	units    atomic.Int64
	migrated atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64

	started  time.Time
	finished time.Time
}

// Units returns the number of discovered collections.
func (s *Summary) Units() int64 { return s.units.Load() }

// Migrated returns the number of collections uploaded successfully.
func (s *Summary) Migrated() int64 { return s.migrated.Load() }

// Failed returns the number of collections that failed at any stage.
func (s *Summary) Failed() int64 { return s.failed.Load() }

// Skipped returns the number of collections skipped as empty.
func (s *Summary) Skipped() int64 { return s.skipped.Load() }

// Duration returns the batch wall-clock time.
func (s *Summary) Duration() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	if s.finished.IsZero() {
		return time.Since(s.started)
	}
	return s.finished.Sub(s.started)
}

// Fields renders the summary as structured log fields.
func (s *Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int64("units", s.Units()),
		zap.Int64("migrated", s.Migrated()),
		zap.Int64("failed", s.Failed()),
		zap.Int64("skipped", s.Skipped()),
		zap.Duration("duration", s.Duration()),
	}
}

func (s *Summary) begin()         { s.started = time.Now() }
func (s *Summary) finish()        { s.finished = time.Now() }
func (s *Summary) setUnits(n int) { s.units.Store(int64(n)) }
func (s *Summary) addMigrated()   { s.migrated.Add(1) }
func (s *Summary) addFailed()     { s.failed.Add(1) }
func (s *Summary) addSkipped()    { s.skipped.Add(1) }
