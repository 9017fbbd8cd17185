package tally

import "time"

// Snapshot is an immutable point-in-time capture of every metric in a scope
// tree. Maps are keyed by the canonical identity of the metric's
// fully-qualified name and tags. Accessors return copies, so a snapshot can
// be shared freely and can never be mutated through a reference.
type Snapshot interface {
	Counters() map[string]CounterSnapshot
	Gauges() map[string]GaugeSnapshot
	Timers() map[string]TimerSnapshot
	Histograms() map[string]HistogramSnapshot
}

// CounterSnapshot is a point-in-time counter value.
type CounterSnapshot interface {
	Name() string
	Tags() map[string]string
	Value() int64
}

// GaugeSnapshot is a point-in-time gauge value.
type GaugeSnapshot interface {
	Name() string
	Tags() map[string]string
	Value() float64
}

// TimerSnapshot holds the durations a timer recorded while no reporter was
// configured.
type TimerSnapshot interface {
	Name() string
	Tags() map[string]string
	Values() []time.Duration
}

// HistogramSnapshot holds per-bucket pending sample counts.
type HistogramSnapshot interface {
	Name() string
	Tags() map[string]string
	Values() map[float64]int64
	Durations() map[time.Duration]int64
}

// Snapshot captures the current values of every metric in every scope of
// the tree. It is side-effect-free: counter deltas are read, not consumed,
// so repeated calls with no intervening recordings are equal.
func (s *BasicScope) Snapshot() Snapshot {
	snap := &snapshot{
		counters:   make(map[string]CounterSnapshot),
		gauges:     make(map[string]GaugeSnapshot),
		timers:     make(map[string]TimerSnapshot),
		histograms: make(map[string]HistogramSnapshot),
	}

	for _, ss := range s.registry.Scopes() {
		tags := copyStringMap(ss.tags)

		ss.counters.Range(func(key, value interface{}) bool {
			name := ss.fullyQualifiedName(key.(string))
			id := KeyForPrefixedStringMap(name, tags)
			snap.counters[id] = counterSnapshot{
				name:  name,
				tags:  tags,
				value: value.(*BasicCounter).Snapshot(),
			}
			return true
		})
		ss.gauges.Range(func(key, value interface{}) bool {
			name := ss.fullyQualifiedName(key.(string))
			id := KeyForPrefixedStringMap(name, tags)
			snap.gauges[id] = gaugeSnapshot{
				name:  name,
				tags:  tags,
				value: value.(*BasicGauge).Snapshot(),
			}
			return true
		})
		ss.timers.Range(func(key, value interface{}) bool {
			name := ss.fullyQualifiedName(key.(string))
			id := KeyForPrefixedStringMap(name, tags)
			snap.timers[id] = timerSnapshot{
				name:   name,
				tags:   tags,
				values: value.(*BasicTimer).Snapshot(),
			}
			return true
		})
		ss.histograms.Range(func(key, value interface{}) bool {
			name := ss.fullyQualifiedName(key.(string))
			id := KeyForPrefixedStringMap(name, tags)
			h := value.(*BasicHistogram)
			snap.histograms[id] = histogramSnapshot{
				name:      name,
				tags:      tags,
				values:    h.SnapshotValues(),
				durations: h.SnapshotDurations(),
			}
			return true
		})
	}

	return snap
}

type snapshot struct {
	counters   map[string]CounterSnapshot
	gauges     map[string]GaugeSnapshot
	timers     map[string]TimerSnapshot
	histograms map[string]HistogramSnapshot
}

func (s *snapshot) Counters() map[string]CounterSnapshot {
	out := make(map[string]CounterSnapshot, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

func (s *snapshot) Gauges() map[string]GaugeSnapshot {
	out := make(map[string]GaugeSnapshot, len(s.gauges))
	for k, v := range s.gauges {
		out[k] = v
	}
	return out
}

func (s *snapshot) Timers() map[string]TimerSnapshot {
	out := make(map[string]TimerSnapshot, len(s.timers))
	for k, v := range s.timers {
		out[k] = v
	}
	return out
}

func (s *snapshot) Histograms() map[string]HistogramSnapshot {
	out := make(map[string]HistogramSnapshot, len(s.histograms))
	for k, v := range s.histograms {
		out[k] = v
	}
	return out
}

type counterSnapshot struct {
	name  string
	tags  map[string]string
	value int64
}

func (s counterSnapshot) Name() string { return s.name }
func (s counterSnapshot) Tags() map[string]string { return copyStringMap(s.tags) }
func (s counterSnapshot) Value() int64 { return s.value }

type gaugeSnapshot struct {
	name  string
	tags  map[string]string
	value float64
}

func (s gaugeSnapshot) Name() string { return s.name }
func (s gaugeSnapshot) Tags() map[string]string { return copyStringMap(s.tags) }
func (s gaugeSnapshot) Value() float64 { return s.value }

type timerSnapshot struct {
	name   string
	tags   map[string]string
	values []time.Duration
}

func (s timerSnapshot) Name() string { return s.name }
func (s timerSnapshot) Tags() map[string]string { return copyStringMap(s.tags) }

func (s timerSnapshot) Values() []time.Duration {
	out := make([]time.Duration, len(s.values))
	copy(out, s.values)
	return out
}

type histogramSnapshot struct {
	name      string
	tags      map[string]string
	values    map[float64]int64
	durations map[time.Duration]int64
}

func (s histogramSnapshot) Name() string { return s.name }
func (s histogramSnapshot) Tags() map[string]string { return copyStringMap(s.tags) }

func (s histogramSnapshot) Values() map[float64]int64 {
	out := make(map[float64]int64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s histogramSnapshot) Durations() map[time.Duration]int64 {
	out := make(map[time.Duration]int64, len(s.durations))
	for k, v := range s.durations {
		out[k] = v
	}
	return out
}
