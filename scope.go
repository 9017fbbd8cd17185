package tally

// Scope is a named, tagged namespace for metrics with possible child scopes.
// Implementations must be safe for concurrent use; instruments are created
// lazily and deduplicated by local name within a kind.
//
// This interface is designed to be minimal and stable. If new capabilities
// are needed we may later introduce separate optional interfaces rather than
// expanding this surface.
type Scope interface {
	// Counter returns the counter with the given local name, allocating it
	// on first use.
	Counter(name string) Counter

	// Gauge returns the gauge with the given local name, allocating it on
	// first use.
	Gauge(name string) Gauge

	// Timer returns the timer with the given local name, allocating it on
	// first use.
	Timer(name string) Timer

	// Histogram returns the histogram with the given local name, allocating
	// it on first use. A nil buckets value selects the scope's default
	// buckets. The buckets supplied on first allocation are fixed for the
	// lifetime of the instrument.
	Histogram(name string, buckets Buckets) Histogram

	// Tagged returns a child scope with the same prefix and this scope's
	// tags merged with the given tags, the given tags winning on key
	// collision. The result is deduplicated per (prefix, tags) identity.
	Tagged(tags map[string]string) Scope

	// SubScope returns a child scope whose prefix is this scope's
	// fully-qualified form of name, carrying the same tags. The result is
	// deduplicated per (prefix, tags) identity.
	SubScope(name string) Scope

	// Capabilities returns the configured reporter's advertised
	// capabilities, or a no-capabilities value if no reporter is configured.
	Capabilities() Capabilities

	// Close stops the report loop for the scope tree, performs one final
	// report pass and closes the configured reporters. Closing an already
	// closed tree is a no-op.
	Close() error
}

// TestScope is a Scope whose accumulated values can be inspected without a
// reporter. Snapshot is side-effect-free: it never consumes counter deltas,
// so repeated calls observe the same pending values.
type TestScope interface {
	Scope

	// Snapshot returns an immutable point-in-time capture of all metrics in
	// the scope tree.
	Snapshot() Snapshot
}

// Capabilities is a read-only descriptor of what a reporter backend
// supports. The library forwards it from the backend without interpreting
// the values.
type Capabilities interface {
	// Reporting reports whether the backend reports metrics at all.
	Reporting() bool

	// Tagging reports whether the backend supports tagged metrics.
	Tagging() bool
}
