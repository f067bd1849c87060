package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The API server scopes keys per authenticated owner so one user's
// entries can be purged without touching another's.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
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

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(owner string) string {
	return k.prefix + k.inner.SnapshotKey(owner)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
