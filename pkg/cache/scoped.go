package cache

// ScopedKeyer wraps a Keyer with a prefix so different contexts (separate
// projects, separate solver configurations under test) get disjoint cache
// namespaces.
//
// Example usage:
//
//	projKeyer := NewScopedKeyer(NewDefaultKeyer(), "proj:fabric:")
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

// VerdictKey generates a prefixed key for verdict caching.
func (k *ScopedKeyer) VerdictKey(docHash string, opts VerdictKeyOpts) string {
	return k.prefix + k.inner.VerdictKey(docHash, opts)
}

// EmbeddingKey generates a prefixed key for embedded document caching.
func (k *ScopedKeyer) EmbeddingKey(docHash string, opts EmbeddingKeyOpts) string {
	return k.prefix + k.inner.EmbeddingKey(docHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
