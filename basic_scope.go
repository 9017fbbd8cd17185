package tally

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BasicScope is the reference Scope implementation. It is concurrency-safe:
// any number of goroutines may record metrics and derive subscopes without
// external synchronization while the report loop runs.
//
// The per-kind sync.Maps nearly always allow lock-free reads; the
// consequence of reporting a newly-made metric in the middle of a report
// pass is acceptable, so locks are only taken when allocating new metrics.
type BasicScope struct {
	separator      string
	prefix         string
	tags           map[string]string
	reporter       StatsReporter
	cachedReporter CachedStatsReporter
	defaultBuckets Buckets
	logger         *zap.Logger

	registry    *scopeRegistry
	bucketCache *bucketCache

	counters   sync.Map // map[string]*BasicCounter
	gauges     sync.Map // map[string]*BasicGauge
	timers     sync.Map // map[string]*BasicTimer
	histograms sync.Map // map[string]*BasicHistogram

	counterAllocMu   sync.Mutex
	gaugeAllocMu     sync.Mutex
	timerAllocMu     sync.Mutex
	histogramAllocMu sync.Mutex

	// report loop state, set on the root scope only
	closed atomic.Bool
	quit   chan struct{}
	loop   sync.WaitGroup
}

var (
	_ Scope     = (*BasicScope)(nil)
	_ TestScope = (*BasicScope)(nil)
)

// NewRootScope constructs the root scope of a new scope tree. Each root
// scope owns its own registry and, when a reporter and a positive report
// interval are configured, its own background report loop.
func NewRootScope(opts ...ScopeOption) *BasicScope {
	cfg := &scopeConfig{separator: DefaultSeparator}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.tags == nil {
		cfg.tags = make(map[string]string)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	s := &BasicScope{
		separator:      cfg.separator,
		prefix:         cfg.prefix,
		tags:           cfg.tags,
		reporter:       cfg.reporter,
		cachedReporter: cfg.cachedReporter,
		defaultBuckets: cfg.defaultBuckets,
		logger:         cfg.logger,
		bucketCache:    newBucketCache(),
	}
	s.registry = newScopeRegistry(s)

	if cfg.reportInterval > 0 && (s.reporter != nil || s.cachedReporter != nil) {
		s.quit = make(chan struct{})
		s.loop.Add(1)
		go s.reportLoop(cfg.reportInterval)
	}

	return s
}

// NewTestScope constructs a reporterless scope whose accumulated values can
// be inspected with Snapshot. Intended for tests.
func NewTestScope(prefix string, tags map[string]string) TestScope {
	return NewRootScope(WithPrefix(prefix), WithTags(tags))
}

// Counter returns the counter for name, allocating it exactly once even
// under concurrent calls with the same name.
func (s *BasicScope) Counter(name string) Counter {
	if v, ok := s.counters.Load(name); ok {
		return v.(*BasicCounter)
	}

	s.counterAllocMu.Lock()
	defer s.counterAllocMu.Unlock()

	if v, ok := s.counters.Load(name); ok {
		return v.(*BasicCounter)
	}

	var cached CachedCount
	if s.cachedReporter != nil {
		cached = s.cachedReporter.AllocateCounter(s.fullyQualifiedName(name), s.tags)
	}
	counter := newBasicCounter(cached)
	s.counters.Store(name, counter)
	return counter
}

// Gauge returns the gauge for name, allocating it exactly once.
func (s *BasicScope) Gauge(name string) Gauge {
	if v, ok := s.gauges.Load(name); ok {
		return v.(*BasicGauge)
	}

	s.gaugeAllocMu.Lock()
	defer s.gaugeAllocMu.Unlock()

	if v, ok := s.gauges.Load(name); ok {
		return v.(*BasicGauge)
	}

	var cached CachedGauge
	if s.cachedReporter != nil {
		cached = s.cachedReporter.AllocateGauge(s.fullyQualifiedName(name), s.tags)
	}
	gauge := newBasicGauge(cached)
	s.gauges.Store(name, gauge)
	return gauge
}

// Timer returns the timer for name, allocating it exactly once. The
// fully-qualified name is resolved here, not on every Record call.
func (s *BasicScope) Timer(name string) Timer {
	if v, ok := s.timers.Load(name); ok {
		return v.(*BasicTimer)
	}

	s.timerAllocMu.Lock()
	defer s.timerAllocMu.Unlock()

	if v, ok := s.timers.Load(name); ok {
		return v.(*BasicTimer)
	}

	fullName := s.fullyQualifiedName(name)
	var cached CachedTimer
	if s.cachedReporter != nil {
		cached = s.cachedReporter.AllocateTimer(fullName, s.tags)
	}
	timer := newBasicTimer(fullName, s.tags, s.reporter, cached)
	s.timers.Store(name, timer)
	return timer
}

// Histogram returns the histogram for name, allocating it exactly once. A
// nil buckets value selects the scope's default buckets. The buckets used
// are fixed at first allocation; later calls with different buckets return
// the existing instrument unchanged.
func (s *BasicScope) Histogram(name string, buckets Buckets) Histogram {
	if buckets == nil {
		buckets = s.defaultBuckets
	}

	if v, ok := s.histograms.Load(name); ok {
		return v.(*BasicHistogram)
	}

	s.histogramAllocMu.Lock()
	defer s.histogramAllocMu.Unlock()

	if v, ok := s.histograms.Load(name); ok {
		return v.(*BasicHistogram)
	}

	fullName := s.fullyQualifiedName(name)
	storage := s.bucketCache.Get(buckets)
	var cached CachedHistogram
	if s.cachedReporter != nil {
		cached = s.cachedReporter.AllocateHistogram(fullName, s.tags, storage.buckets)
	}
	histogram := newBasicHistogram(fullName, s.tags, s.reporter, storage, cached)
	s.histograms.Store(name, histogram)
	return histogram
}

// Tagged returns a scope with the same prefix and this scope's tags merged
// with tags, deduplicated through the registry.
func (s *BasicScope) Tagged(tags map[string]string) Scope {
	return s.registry.Subscope(s, s.prefix, copyStringMap(tags))
}

// SubScope returns a scope prefixed with the fully-qualified name,
// carrying this scope's tags, deduplicated through the registry.
func (s *BasicScope) SubScope(name string) Scope {
	return s.registry.Subscope(s, s.fullyQualifiedName(name), nil)
}

// Capabilities returns the configured reporter's capabilities, preferring
// the plain reporter when both are configured.
func (s *BasicScope) Capabilities() Capabilities {
	if s.reporter != nil {
		return s.reporter.Capabilities()
	}
	if s.cachedReporter != nil {
		return s.cachedReporter.Capabilities()
	}
	return CapabilitiesNone
}

// Close shuts down the scope tree: it stops the report loop, runs one
// final report pass to flush anything recorded since the last tick, then
// closes the reporters. Closing any scope closes the whole tree; second
// and later calls are no-ops.
func (s *BasicScope) Close() error {
	root := s.registry.root
	if !root.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Stop future ticks before the final flush; no tick may start once the
	// quit channel is closed and the loop goroutine has exited.
	if root.quit != nil {
		close(root.quit)
		root.loop.Wait()
	}

	root.reportLoopIteration()

	var err error
	if root.reporter != nil {
		err = multierr.Append(err, root.reporter.Close())
	}
	if root.cachedReporter != nil {
		err = multierr.Append(err, root.cachedReporter.Close())
	}
	if err != nil {
		root.logger.Error("failed to close metrics reporter", zap.Error(err))
	}
	return err
}

func (s *BasicScope) fullyQualifiedName(name string) string {
	if len(s.prefix) == 0 {
		return name
	}
	return s.prefix + s.separator + name
}

// report forwards this scope's counters, gauges and histograms to r.
// Timers report directly at record time and need no pass here.
func (s *BasicScope) report(r StatsReporter) {
	s.counters.Range(func(key, value interface{}) bool {
		value.(*BasicCounter).report(s.fullyQualifiedName(key.(string)), s.tags, r)
		return true
	})
	s.gauges.Range(func(key, value interface{}) bool {
		value.(*BasicGauge).report(s.fullyQualifiedName(key.(string)), s.tags, r)
		return true
	})
	s.histograms.Range(func(key, value interface{}) bool {
		value.(*BasicHistogram).report(s.fullyQualifiedName(key.(string)), s.tags, r)
		return true
	})
}

// cachedReport flushes this scope's pre-allocated reporter handles.
func (s *BasicScope) cachedReport() {
	s.counters.Range(func(_, value interface{}) bool {
		value.(*BasicCounter).cachedReport()
		return true
	})
	s.gauges.Range(func(_, value interface{}) bool {
		value.(*BasicGauge).cachedReport()
		return true
	})
	s.histograms.Range(func(_, value interface{}) bool {
		value.(*BasicHistogram).cachedReport()
		return true
	})
}

// reportLoopIteration runs one full report pass over the registry. A
// panicking backend is contained so it cannot corrupt the scope tree or
// kill the loop; allocation locks are never held here.
func (s *BasicScope) reportLoopIteration() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("metrics reporter panicked during report pass",
				zap.Any("panic", r))
		}
	}()

	if s.reporter != nil {
		s.registry.Report(s.reporter)
		s.reporter.Flush()
	}
	if s.cachedReporter != nil {
		s.registry.CachedReport()
		s.cachedReporter.Flush()
	}
}

func (s *BasicScope) reportLoop(interval time.Duration) {
	defer s.loop.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportLoopIteration()
		case <-s.quit:
			return
		}
	}
}
