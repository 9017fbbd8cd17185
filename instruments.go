package tally

import (
	"sort"
	"time"
)

// Counter records monotonic counts.
// Methods must be safe for concurrent use.
type Counter interface {
	Inc(delta int64)
}

// Gauge records an instantaneous value with overwrite semantics.
// Methods must be safe for concurrent use.
type Gauge interface {
	Update(value float64)
}

// Timer records durations. Timers are not buffered by the scope: every
// recorded duration is forwarded to the reporter at record time.
// Methods must be safe for concurrent use.
type Timer interface {
	Record(interval time.Duration)
	Start() Stopwatch
}

// Histogram records the distribution of values or durations into fixed
// buckets. Methods must be safe for concurrent use.
type Histogram interface {
	RecordValue(value float64)
	RecordDuration(interval time.Duration)
	Start() Stopwatch
}

// Buckets is an ordered set of histogram bucket boundaries, expressible as
// either raw values or durations.
type Buckets interface {
	sort.Interface

	// AsValues returns the bucket boundaries as float64 values.
	AsValues() []float64

	// AsDurations returns the bucket boundaries as durations.
	AsDurations() []time.Duration

	// String returns a human-readable form of the boundaries.
	String() string
}

// BucketPair describes the lower and upper bounds of a single derived
// histogram bucket in both value and duration form.
type BucketPair interface {
	LowerBoundValue() float64
	UpperBoundValue() float64
	LowerBoundDuration() time.Duration
	UpperBoundDuration() time.Duration
}

// StopwatchRecorder is a recorder that a Stopwatch reports its elapsed time
// to when stopped.
type StopwatchRecorder interface {
	RecordStopwatch(stopwatchStart time.Time)
}

// Stopwatch is a helper for measuring the elapsed time between Start and
// Stop on a Timer or Histogram.
type Stopwatch struct {
	start    time.Time
	recorder StopwatchRecorder
}

// NewStopwatch creates a Stopwatch that reports to recorder on Stop.
func NewStopwatch(start time.Time, recorder StopwatchRecorder) Stopwatch {
	return Stopwatch{start: start, recorder: recorder}
}

// Stop records the time elapsed since the stopwatch was started.
func (sw Stopwatch) Stop() {
	sw.recorder.RecordStopwatch(sw.start)
}
