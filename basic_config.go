package tally

import (
	"time"

	"go.uber.org/zap"
)

// DefaultSeparator joins a scope's prefix with a metric's local name.
const DefaultSeparator = "."

type scopeConfig struct {
	prefix         string
	separator      string
	tags           map[string]string
	reporter       StatsReporter
	cachedReporter CachedStatsReporter
	defaultBuckets Buckets
	reportInterval time.Duration
	logger         *zap.Logger
}

// ScopeOption configures a root scope constructed by NewRootScope.
type ScopeOption func(*scopeConfig)

// WithPrefix sets the root scope's name prefix.
func WithPrefix(prefix string) ScopeOption {
	return func(cfg *scopeConfig) { cfg.prefix = prefix }
}

// WithSeparator sets the separator joining prefixes and metric names.
// Defaults to DefaultSeparator.
func WithSeparator(separator string) ScopeOption {
	return func(cfg *scopeConfig) { cfg.separator = separator }
}

// WithTags sets the root scope's tags. The map is copied.
func WithTags(tags map[string]string) ScopeOption {
	return func(cfg *scopeConfig) { cfg.tags = copyStringMap(tags) }
}

// WithReporter sets the plain reporter backend.
func WithReporter(r StatsReporter) ScopeOption {
	return func(cfg *scopeConfig) { cfg.reporter = r }
}

// WithCachedReporter sets the cached reporter backend. A scope may carry
// both a plain and a cached reporter; each runs its own protocol on every
// report pass.
func WithCachedReporter(r CachedStatsReporter) ScopeOption {
	return func(cfg *scopeConfig) { cfg.cachedReporter = r }
}

// WithDefaultBuckets sets the buckets used by Histogram when called with
// nil buckets.
func WithDefaultBuckets(buckets Buckets) ScopeOption {
	return func(cfg *scopeConfig) { cfg.defaultBuckets = buckets }
}

// WithReportInterval sets the period of the background report loop. A zero
// or negative interval disables the loop; metrics are then only flushed by
// Close.
func WithReportInterval(interval time.Duration) ScopeOption {
	return func(cfg *scopeConfig) { cfg.reportInterval = interval }
}

// WithLogger sets the logger used for reporter failures. Defaults to a
// no-op logger.
func WithLogger(logger *zap.Logger) ScopeOption {
	return func(cfg *scopeConfig) { cfg.logger = logger }
}

// copyStringMap makes a defensive copy of m. A nil or empty map yields an
// empty, never-nil map.
func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeRightTags merges tagsLeft with tagsRight, the right map winning on
// key collision. The result is always a fresh map.
func mergeRightTags(tagsLeft, tagsRight map[string]string) map[string]string {
	result := make(map[string]string, len(tagsLeft)+len(tagsRight))
	for k, v := range tagsLeft {
		result[k] = v
	}
	for k, v := range tagsRight {
		result[k] = v
	}
	return result
}
