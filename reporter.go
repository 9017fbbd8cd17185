package tally

import "time"

// BaseStatsReporter is the shared surface of plain and cached reporters.
type BaseStatsReporter interface {
	// Capabilities returns the backend's advertised capabilities.
	Capabilities() Capabilities

	// Flush asks the backend to ship anything it has buffered.
	Flush()

	// Close releases the backend. It is called at most once, after the
	// final report pass.
	Close() error
}

// StatsReporter receives fully resolved metric values on every report pass.
// Implementations must be safe for concurrent use: timers report at record
// time from arbitrary goroutines while the report loop forwards the
// remaining kinds.
type StatsReporter interface {
	BaseStatsReporter

	// ReportCounter reports the delta accumulated by a counter since the
	// previous pass.
	ReportCounter(name string, tags map[string]string, value int64)

	// ReportGauge reports the last value written to a gauge.
	ReportGauge(name string, tags map[string]string, value float64)

	// ReportTimer reports a single recorded duration.
	ReportTimer(name string, tags map[string]string, interval time.Duration)

	// ReportHistogramValueSamples reports the number of samples that landed
	// in a value bucket since the previous pass.
	ReportHistogramValueSamples(
		name string,
		tags map[string]string,
		buckets Buckets,
		bucketLowerBound,
		bucketUpperBound float64,
		samples int64,
	)

	// ReportHistogramDurationSamples reports the number of samples that
	// landed in a duration bucket since the previous pass.
	ReportHistogramDurationSamples(
		name string,
		tags map[string]string,
		buckets Buckets,
		bucketLowerBound,
		bucketUpperBound time.Duration,
		samples int64,
	)
}

// CachedStatsReporter pre-allocates backend-side handles per metric. The
// Allocate methods are called exactly once per instrument, at allocation
// time under the scope's allocation lock; the returned handles are flushed
// on every report pass without re-resolving names or tags.
type CachedStatsReporter interface {
	BaseStatsReporter

	AllocateCounter(name string, tags map[string]string) CachedCount
	AllocateGauge(name string, tags map[string]string) CachedGauge
	AllocateTimer(name string, tags map[string]string) CachedTimer
	AllocateHistogram(name string, tags map[string]string, buckets Buckets) CachedHistogram
}

// CachedCount is a pre-allocated counter handle.
type CachedCount interface {
	ReportCount(value int64)
}

// CachedGauge is a pre-allocated gauge handle.
type CachedGauge interface {
	ReportGauge(value float64)
}

// CachedTimer is a pre-allocated timer handle.
type CachedTimer interface {
	ReportTimer(interval time.Duration)
}

// CachedHistogram is a pre-allocated histogram handle from which per-bucket
// handles are derived once at allocation time.
type CachedHistogram interface {
	ValueBucket(bucketLowerBound, bucketUpperBound float64) CachedHistogramBucket
	DurationBucket(bucketLowerBound, bucketUpperBound time.Duration) CachedHistogramBucket
}

// CachedHistogramBucket is a pre-allocated handle for one histogram bucket.
type CachedHistogramBucket interface {
	ReportSamples(value int64)
}

var (
	// CapabilitiesNone is a Capabilities value advertising nothing.
	CapabilitiesNone Capabilities = capabilities{}

	// CapabilitiesReporting advertises reporting without tagging.
	CapabilitiesReporting Capabilities = capabilities{reporting: true}

	// CapabilitiesReportingTagging advertises reporting and tagging.
	CapabilitiesReportingTagging Capabilities = capabilities{reporting: true, tagging: true}
)

type capabilities struct {
	reporting bool
	tagging   bool
}

func (c capabilities) Reporting() bool { return c.reporting }
func (c capabilities) Tagging() bool { return c.tagging }

// NullStatsReporter is a StatsReporter that discards everything.
var NullStatsReporter StatsReporter = nullStatsReporter{}

type nullStatsReporter struct{}

func (nullStatsReporter) ReportCounter(string, map[string]string, int64) {}
func (nullStatsReporter) ReportGauge(string, map[string]string, float64) {}
func (nullStatsReporter) ReportTimer(string, map[string]string, time.Duration) {
}

func (nullStatsReporter) ReportHistogramValueSamples(
	string, map[string]string, Buckets, float64, float64, int64,
) {
}

func (nullStatsReporter) ReportHistogramDurationSamples(
	string, map[string]string, Buckets, time.Duration, time.Duration, int64,
) {
}

func (nullStatsReporter) Capabilities() Capabilities { return CapabilitiesNone }
func (nullStatsReporter) Flush() {}
func (nullStatsReporter) Close() error { return nil }
