package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several deployments share one Redis or MongoDB
// backend and must not see each other's entries.
//
// Example usage:
//
//	stagingKeyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// SolveKey generates a prefixed key for a solved puzzle.
func (k *ScopedKeyer) SolveKey(opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(opts)
}

// RenderKey generates a prefixed key for a rendered diagram.
func (k *ScopedKeyer) RenderKey(boardHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(boardHash, opts)
}
