package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each deployment or
// tenant its own key space in a shared backend:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TransformKey returns the prefixed transform key.
func (k *ScopedKeyer) TransformKey(filterHash, text string) string {
	return k.prefix + k.inner.TransformKey(filterHash, text)
}

// DefinitionKey returns the prefixed definition key.
func (k *ScopedKeyer) DefinitionKey(source, id string) string {
	return k.prefix + k.inner.DefinitionKey(source, id)
}
