/*
Package tally provides a concurrency-safe, scope-based metrics instrumentation
library for Go.

# Overview

The library is organized around two main concepts:

1. Scope: a named, tagged namespace for metrics. A scope owns a name prefix,
an immutable tag set and lazily-allocated metric instruments (Counter, Gauge,
Timer, Histogram). Scopes form a tree: Tagged and SubScope derive child scopes
that inherit the parent's prefix and tags, deduplicated by canonical
(prefix, tags) identity so that the same combination always yields the same
scope instance.

	type Scope interface {
	  Counter(name string) Counter
	  Gauge(name string) Gauge
	  Timer(name string) Timer
	  Histogram(name string, buckets Buckets) Histogram
	  Tagged(tags map[string]string) Scope
	  SubScope(name string) Scope
	  Capabilities() Capabilities
	  Close() error
	}

2. StatsReporter / CachedStatsReporter: pluggable backends that receive
accumulated values. The plain reporter is handed fully-qualified names and
tags on every report pass; the cached reporter pre-allocates backend-side
handles once per metric at allocation time, so each pass only flushes already
resolved handles.

# Reference implementation

BasicScope implements Scope. Instruments are stored in per-kind sync.Maps
keyed by local name, and each kind has its own allocation mutex serializing
first-time initialization. The hot path (an instrument that already exists)
is a single lock-free sync.Map load; only the allocate-if-absent path takes
the kind's mutex, re-checks, creates and stores.

How it works (high level)

 1. Fast path: look up the instrument in the kind's sync.Map and return it if
    present.
 2. Slow path: acquire the kind's allocation mutex; re-check; allocate any
    cached-reporter handle; create and store the instrument; unlock.
 3. A root scope started with a report interval runs a background ticker
    goroutine. On each tick every scope in the registry is walked and its
    accumulated values are forwarded to the configured reporter(s), followed
    by a single Flush. Counters and histogram buckets report deltas since the
    previous pass; gauges report only when written since the previous pass;
    timers bypass the loop entirely and report at record time.
 4. Close stops the ticker synchronously, runs one final report pass so
    nothing recorded after the last tick is lost, then closes the reporters.

Examples

	reporter := newStatsdReporter() // your StatsReporter implementation
	scope := tally.NewRootScope(
	    tally.WithPrefix("svc"),
	    tally.WithReporter(reporter),
	    tally.WithReportInterval(10*time.Second),
	)
	defer scope.Close()

	scope.Counter("requests").Inc(1)
	sw := scope.Timer("latency").Start()
	// ... do work ...
	sw.Stop()

	dbScope := scope.SubScope("db").Tagged(map[string]string{"shard": "7"})
	dbScope.Counter("queries").Inc(1)

# Snapshots

Snapshot returns an immutable, side-effect-free capture of every metric in
every scope of the tree, keyed by the canonical identity of the metric's
fully-qualified name and tags. Unlike a report pass it never consumes counter
deltas, so repeated calls are safe for tests and introspection. NewTestScope
constructs a reporterless scope for exactly that purpose.

# Build and test

- Run unit tests:

	go test ./...

- Run with the race detector:

	go test -race ./...

# Notes

- Tag maps are defensively copied at every boundary; mutating a map after
passing it to Tagged or WithTags has no effect on the scope tree.

- Histogram bucket configuration is fixed at first allocation for a given
name; later calls with different buckets return the existing instrument.
*/
package tally
