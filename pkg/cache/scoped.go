package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without key collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mapcustomizer:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(baseHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(baseHash, opts)
}
