package tally

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// BasicCounter is a thread-safe monotonic counter cell with delta reporting
// semantics: each report pass reads and consumes the delta accumulated since
// the previous pass, so backends aggregate sums of deltas. Snapshot reads
// the pending delta without consuming it.
type BasicCounter struct {
	prev   atomic.Int64
	curr   atomic.Int64
	cached CachedCount
}

func newBasicCounter(cached CachedCount) *BasicCounter {
	return &BasicCounter{cached: cached}
}

// Inc increments the counter by delta.
func (c *BasicCounter) Inc(delta int64) {
	c.curr.Add(delta)
}

// value consumes and returns the delta accumulated since the last call.
func (c *BasicCounter) value() int64 {
	curr := c.curr.Load()
	prev := c.prev.Load()
	if curr == prev {
		return 0
	}
	c.prev.Store(curr)
	return curr - prev
}

func (c *BasicCounter) report(name string, tags map[string]string, r StatsReporter) {
	delta := c.value()
	if delta == 0 {
		return
	}
	r.ReportCounter(name, tags, delta)
}

func (c *BasicCounter) cachedReport() {
	delta := c.value()
	if delta == 0 {
		return
	}
	c.cached.ReportCount(delta)
}

// Snapshot returns the delta pending for the next report pass without
// consuming it.
func (c *BasicCounter) Snapshot() int64 {
	return c.curr.Load() - c.prev.Load()
}

// BasicGauge is a thread-safe gauge cell with overwrite semantics. A gauge
// is only forwarded to the reporter if it was written since the previous
// report pass.
type BasicGauge struct {
	updated atomic.Bool
	curr    atomic.Uint64
	cached  CachedGauge
}

func newBasicGauge(cached CachedGauge) *BasicGauge {
	return &BasicGauge{cached: cached}
}

// Update sets the gauge to value.
func (g *BasicGauge) Update(value float64) {
	g.curr.Store(math.Float64bits(value))
	g.updated.Store(true)
}

func (g *BasicGauge) value() float64 {
	return math.Float64frombits(g.curr.Load())
}

func (g *BasicGauge) report(name string, tags map[string]string, r StatsReporter) {
	if g.updated.Swap(false) {
		r.ReportGauge(name, tags, g.value())
	}
}

func (g *BasicGauge) cachedReport() {
	if g.updated.Swap(false) {
		g.cached.ReportGauge(g.value())
	}
}

// Snapshot returns the last written value.
func (g *BasicGauge) Snapshot() float64 {
	return g.value()
}

// BasicTimer is a pass-through timer cell: recorded durations are forwarded
// to the reporter at record time rather than buffered for the report loop.
// The fully-qualified name and tags are resolved once at allocation time.
//
// When neither a plain nor a cached reporter is configured the recorded
// durations are kept so that Snapshot can still observe them.
type BasicTimer struct {
	name     string
	tags     map[string]string
	reporter StatsReporter
	cached   CachedTimer

	unreported struct {
		sync.RWMutex
		values []time.Duration
	}
}

func newBasicTimer(name string, tags map[string]string, r StatsReporter, cached CachedTimer) *BasicTimer {
	return &BasicTimer{
		name:     name,
		tags:     tags,
		reporter: r,
		cached:   cached,
	}
}

// Record forwards interval to the configured reporter.
func (t *BasicTimer) Record(interval time.Duration) {
	switch {
	case t.cached != nil:
		t.cached.ReportTimer(interval)
	case t.reporter != nil:
		t.reporter.ReportTimer(t.name, t.tags, interval)
	default:
		t.unreported.Lock()
		t.unreported.values = append(t.unreported.values, interval)
		t.unreported.Unlock()
	}
}

// Start returns a Stopwatch recording into this timer on Stop.
func (t *BasicTimer) Start() Stopwatch {
	return NewStopwatch(time.Now(), t)
}

// RecordStopwatch implements StopwatchRecorder.
func (t *BasicTimer) RecordStopwatch(stopwatchStart time.Time) {
	t.Record(time.Since(stopwatchStart))
}

// Snapshot returns a copy of the durations recorded while no reporter was
// configured.
func (t *BasicTimer) Snapshot() []time.Duration {
	t.unreported.RLock()
	snap := make([]time.Duration, len(t.unreported.values))
	copy(snap, t.unreported.values)
	t.unreported.RUnlock()
	return snap
}

// histogramSample is the accumulation state of one derived bucket: value
// and duration sample counts accumulate independently, each with delta
// reporting like counters.
type histogramSample struct {
	values         *BasicCounter
	durations      *BasicCounter
	cachedValue    CachedHistogramBucket
	cachedDuration CachedHistogramBucket
}

// BasicHistogram is a thread-safe bucketed histogram cell. The bucket
// layout is fixed at allocation time; samples are counted per bucket and
// reported as deltas.
type BasicHistogram struct {
	name          string
	tags          map[string]string
	reporter      StatsReporter
	specification Buckets
	pairs         []BucketPair
	samples       []histogramSample
}

func newBasicHistogram(
	name string,
	tags map[string]string,
	r StatsReporter,
	storage bucketStorage,
	cached CachedHistogram,
) *BasicHistogram {
	h := &BasicHistogram{
		name:          name,
		tags:          tags,
		reporter:      r,
		specification: storage.buckets,
		pairs:         storage.pairs,
		samples:       make([]histogramSample, len(storage.pairs)),
	}

	for i := range h.samples {
		h.samples[i].values = newBasicCounter(nil)
		h.samples[i].durations = newBasicCounter(nil)

		if cached != nil {
			h.samples[i].cachedValue = cached.ValueBucket(
				h.pairs[i].LowerBoundValue(),
				h.pairs[i].UpperBoundValue(),
			)
			h.samples[i].cachedDuration = cached.DurationBucket(
				h.pairs[i].LowerBoundDuration(),
				h.pairs[i].UpperBoundDuration(),
			)
		}
	}

	return h
}

// RecordValue counts value in its bucket. The derived bucket set always
// ends with a math.MaxFloat64 upper bound, so the search cannot miss.
func (h *BasicHistogram) RecordValue(value float64) {
	idx := sort.Search(len(h.pairs), func(i int) bool {
		return h.pairs[i].UpperBoundValue() >= value
	})
	h.samples[idx].values.Inc(1)
}

// RecordDuration counts interval in its bucket. The derived bucket set
// always ends with a math.MaxInt64 upper bound, so the search cannot miss.
func (h *BasicHistogram) RecordDuration(interval time.Duration) {
	idx := sort.Search(len(h.pairs), func(i int) bool {
		return h.pairs[i].UpperBoundDuration() >= interval
	})
	h.samples[idx].durations.Inc(1)
}

// Start returns a Stopwatch recording an elapsed duration into this
// histogram on Stop.
func (h *BasicHistogram) Start() Stopwatch {
	return NewStopwatch(time.Now(), h)
}

// RecordStopwatch implements StopwatchRecorder.
func (h *BasicHistogram) RecordStopwatch(stopwatchStart time.Time) {
	h.RecordDuration(time.Since(stopwatchStart))
}

func (h *BasicHistogram) report(name string, tags map[string]string, r StatsReporter) {
	for i := range h.samples {
		if samples := h.samples[i].values.value(); samples != 0 {
			r.ReportHistogramValueSamples(
				name,
				tags,
				h.specification,
				h.pairs[i].LowerBoundValue(),
				h.pairs[i].UpperBoundValue(),
				samples,
			)
		}
		if samples := h.samples[i].durations.value(); samples != 0 {
			r.ReportHistogramDurationSamples(
				name,
				tags,
				h.specification,
				h.pairs[i].LowerBoundDuration(),
				h.pairs[i].UpperBoundDuration(),
				samples,
			)
		}
	}
}

func (h *BasicHistogram) cachedReport() {
	for i := range h.samples {
		if samples := h.samples[i].values.value(); samples != 0 {
			h.samples[i].cachedValue.ReportSamples(samples)
		}
		if samples := h.samples[i].durations.value(); samples != 0 {
			h.samples[i].cachedDuration.ReportSamples(samples)
		}
	}
}

// SnapshotValues returns the pending value sample count per bucket upper
// bound without consuming the deltas.
func (h *BasicHistogram) SnapshotValues() map[float64]int64 {
	vals := make(map[float64]int64, len(h.pairs))
	for i := range h.pairs {
		vals[h.pairs[i].UpperBoundValue()] = h.samples[i].values.Snapshot()
	}
	return vals
}

// SnapshotDurations returns the pending duration sample count per bucket
// upper bound without consuming the deltas.
func (h *BasicHistogram) SnapshotDurations() map[time.Duration]int64 {
	durations := make(map[time.Duration]int64, len(h.pairs))
	for i := range h.pairs {
		durations[h.pairs[i].UpperBoundDuration()] = h.samples[i].durations.Snapshot()
	}
	return durations
}
