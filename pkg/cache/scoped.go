package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts get
// disjoint cache namespaces. The server uses this to keep per-deployment
// entries apart when several instances share one Redis.
//
// Example usage:
//
//	// Keys scoped to one deployment
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "wordmiro:prod:")
//
//	// Unscoped keys for the CLI
//	keyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ExpandKey generates a prefixed key for expansion results.
func (k *ScopedKeyer) ExpandKey(lemma string, opts ExpandKeyOpts) string {
	return k.prefix + k.inner.ExpandKey(lemma, opts)
}

// LayoutKey generates a prefixed key for computed layouts.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
