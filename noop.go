package tally

import "time"

// NoopScope is a Scope that does nothing and allocates nothing.
var NoopScope Scope = noopScope{}

// NewNoopScope returns a Scope whose instruments discard every recording.
// Useful as a default when instrumentation is disabled.
func NewNoopScope() Scope {
	return noopScope{}
}

type noopScope struct{}

func (noopScope) Counter(string) Counter { return noopCounter{} }
func (noopScope) Gauge(string) Gauge { return noopGauge{} }
func (noopScope) Timer(string) Timer { return noopTimer{} }
func (noopScope) Histogram(string, Buckets) Histogram { return noopHistogram{} }
func (s noopScope) Tagged(map[string]string) Scope { return s }
func (s noopScope) SubScope(string) Scope { return s }
func (noopScope) Capabilities() Capabilities { return CapabilitiesNone }
func (noopScope) Close() error { return nil }

type noopCounter struct{}

func (noopCounter) Inc(int64) {}

type noopGauge struct{}

func (noopGauge) Update(float64) {}

type noopStopwatchRecorder struct{}

func (noopStopwatchRecorder) RecordStopwatch(time.Time) {}

type noopTimer struct{}

func (noopTimer) Record(time.Duration) {}

func (noopTimer) Start() Stopwatch {
	return NewStopwatch(time.Now(), noopStopwatchRecorder{})
}

type noopHistogram struct{}

func (noopHistogram) RecordValue(float64) {}
func (noopHistogram) RecordDuration(time.Duration) {}

func (noopHistogram) Start() Stopwatch {
	return NewStopwatch(time.Now(), noopStopwatchRecorder{})
}
