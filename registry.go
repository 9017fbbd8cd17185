package tally

import "sync"

// scopeRegistry is the per-root-tree deduplicating store of scopes, keyed
// by the canonical (prefix, tags) identity key. Every distinct combination
// is materialized at most once, and scopes live for the registry lifetime.
//
// Reads vastly outnumber writes (subscope creation is rare relative to
// metric recording), so lookups take a shared lock and only the
// create-and-insert step takes the single registry-wide allocation lock.
type scopeRegistry struct {
	mu        sync.RWMutex
	root      *BasicScope
	subscopes map[string]*BasicScope
}

func newScopeRegistry(root *BasicScope) *scopeRegistry {
	r := &scopeRegistry{
		root:      root,
		subscopes: make(map[string]*BasicScope),
	}
	r.subscopes[KeyForPrefixedStringMap(root.prefix, root.tags)] = root
	return r
}

// Subscope returns the scope for (prefix, parent tags merged with tags),
// creating it if absent. Callers racing on the same identity key all
// receive the same instance.
func (r *scopeRegistry) Subscope(parent *BasicScope, prefix string, tags map[string]string) *BasicScope {
	key := keyForPrefixedStringMaps(prefix, parent.tags, tags)

	r.mu.RLock()
	if s, ok := r.subscopes[key]; ok {
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.subscopes[key]; ok {
		return s
	}

	subscope := &BasicScope{
		separator:      parent.separator,
		prefix:         prefix,
		tags:           mergeRightTags(parent.tags, tags),
		reporter:       parent.reporter,
		cachedReporter: parent.cachedReporter,
		defaultBuckets: parent.defaultBuckets,
		logger:         parent.logger,
		registry:       parent.registry,
		bucketCache:    parent.bucketCache,
	}
	r.subscopes[key] = subscope
	return subscope
}

// Scopes returns the current scopes as a slice so callers can walk them
// without holding the registry lock while invoking reporter code.
func (r *scopeRegistry) Scopes() []*BasicScope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scopes := make([]*BasicScope, 0, len(r.subscopes))
	for _, s := range r.subscopes {
		scopes = append(scopes, s)
	}
	return scopes
}

// Report runs the plain reporter protocol over every scope.
func (r *scopeRegistry) Report(reporter StatsReporter) {
	for _, s := range r.Scopes() {
		s.report(reporter)
	}
}

// CachedReport runs the cached reporter protocol over every scope.
func (r *scopeRegistry) CachedReport() {
	for _, s := range r.Scopes() {
		s.cachedReport()
	}
}
