package tally

import (
	"sync"
	"time"
)

type reportedCounter struct {
	name  string
	tags  map[string]string
	value int64
}

type reportedGauge struct {
	name  string
	tags  map[string]string
	value float64
}

type reportedTimer struct {
	name     string
	tags     map[string]string
	interval time.Duration
}

type reportedValueSamples struct {
	name       string
	tags       map[string]string
	upperBound float64
	samples    int64
}

type reportedDurationSamples struct {
	name       string
	tags       map[string]string
	upperBound time.Duration
	samples    int64
}

// capturingReporter is a StatsReporter that records every call for
// assertions.
type capturingReporter struct {
	mu              sync.Mutex
	counters        []reportedCounter
	gauges          []reportedGauge
	timers          []reportedTimer
	valueSamples    []reportedValueSamples
	durationSamples []reportedDurationSamples
	flushes         int
	closes          int
}

func newCapturingReporter() *capturingReporter {
	return &capturingReporter{}
}

func (r *capturingReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, reportedCounter{name: name, tags: tags, value: value})
}

func (r *capturingReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges = append(r.gauges, reportedGauge{name: name, tags: tags, value: value})
}

func (r *capturingReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, reportedTimer{name: name, tags: tags, interval: interval})
}

func (r *capturingReporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	_ Buckets,
	_, upperBound float64,
	samples int64,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valueSamples = append(r.valueSamples, reportedValueSamples{
		name:       name,
		tags:       tags,
		upperBound: upperBound,
		samples:    samples,
	})
}

func (r *capturingReporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	_ Buckets,
	_, upperBound time.Duration,
	samples int64,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durationSamples = append(r.durationSamples, reportedDurationSamples{
		name:       name,
		tags:       tags,
		upperBound: upperBound,
		samples:    samples,
	})
}

func (r *capturingReporter) Capabilities() Capabilities { return CapabilitiesReportingTagging }

func (r *capturingReporter) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
}

func (r *capturingReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

func (r *capturingReporter) snapshotCounters() []reportedCounter {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reportedCounter, len(r.counters))
	copy(out, r.counters)
	return out
}

func (r *capturingReporter) snapshotGauges() []reportedGauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reportedGauge, len(r.gauges))
	copy(out, r.gauges)
	return out
}

func (r *capturingReporter) snapshotTimers() []reportedTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reportedTimer, len(r.timers))
	copy(out, r.timers)
	return out
}

func (r *capturingReporter) snapshotValueSamples() []reportedValueSamples {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reportedValueSamples, len(r.valueSamples))
	copy(out, r.valueSamples)
	return out
}

func (r *capturingReporter) snapshotDurationSamples() []reportedDurationSamples {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]reportedDurationSamples, len(r.durationSamples))
	copy(out, r.durationSamples)
	return out
}

func (r *capturingReporter) flushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

func (r *capturingReporter) closeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

// capturingCachedReporter is a CachedStatsReporter that tracks allocations
// and accumulates reported values per handle.
type capturingCachedReporter struct {
	mu         sync.Mutex
	counters   []*cachedCount
	gauges     []*cachedGaugeHandle
	timers     []*cachedTimerHandle
	histograms []*cachedHistogramHandle
	flushes    int
	closes     int
}

func newCapturingCachedReporter() *capturingCachedReporter {
	return &capturingCachedReporter{}
}

type cachedCount struct {
	mu    sync.Mutex
	name  string
	total int64
}

func (c *cachedCount) ReportCount(value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += value
}

type cachedGaugeHandle struct {
	mu   sync.Mutex
	name string
	last float64
}

func (g *cachedGaugeHandle) ReportGauge(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = value
}

type cachedTimerHandle struct {
	mu        sync.Mutex
	name      string
	intervals []time.Duration
}

func (t *cachedTimerHandle) ReportTimer(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intervals = append(t.intervals, interval)
}

type cachedHistogramHandle struct {
	mu              sync.Mutex
	name            string
	valueSamples    map[float64]int64
	durationSamples map[time.Duration]int64
}

type cachedValueBucket struct {
	histogram  *cachedHistogramHandle
	upperBound float64
}

func (b cachedValueBucket) ReportSamples(value int64) {
	b.histogram.mu.Lock()
	defer b.histogram.mu.Unlock()
	b.histogram.valueSamples[b.upperBound] += value
}

type cachedDurationBucket struct {
	histogram  *cachedHistogramHandle
	upperBound time.Duration
}

func (b cachedDurationBucket) ReportSamples(value int64) {
	b.histogram.mu.Lock()
	defer b.histogram.mu.Unlock()
	b.histogram.durationSamples[b.upperBound] += value
}

func (h *cachedHistogramHandle) ValueBucket(_, upperBound float64) CachedHistogramBucket {
	return cachedValueBucket{histogram: h, upperBound: upperBound}
}

func (h *cachedHistogramHandle) DurationBucket(_, upperBound time.Duration) CachedHistogramBucket {
	return cachedDurationBucket{histogram: h, upperBound: upperBound}
}

func (r *capturingCachedReporter) AllocateCounter(name string, _ map[string]string) CachedCount {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &cachedCount{name: name}
	r.counters = append(r.counters, c)
	return c
}

func (r *capturingCachedReporter) AllocateGauge(name string, _ map[string]string) CachedGauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &cachedGaugeHandle{name: name}
	r.gauges = append(r.gauges, g)
	return g
}

func (r *capturingCachedReporter) AllocateTimer(name string, _ map[string]string) CachedTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &cachedTimerHandle{name: name}
	r.timers = append(r.timers, t)
	return t
}

func (r *capturingCachedReporter) AllocateHistogram(
	name string, _ map[string]string, _ Buckets,
) CachedHistogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &cachedHistogramHandle{
		name:            name,
		valueSamples:    make(map[float64]int64),
		durationSamples: make(map[time.Duration]int64),
	}
	r.histograms = append(r.histograms, h)
	return h
}

func (r *capturingCachedReporter) Capabilities() Capabilities { return CapabilitiesReporting }

func (r *capturingCachedReporter) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
}

func (r *capturingCachedReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}
