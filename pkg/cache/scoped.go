package cache

// ScopedKeyer prefixes every key of an inner Keyer. It backs cache.prefix
// for the file cache; RedisCache applies its prefix itself.
//
//	keyer := NewScopedKeyer(nil, "pageviz:staging:")
type ScopedKeyer struct {
	Keyer
	Prefix string
}

// NewScopedKeyer returns a ScopedKeyer over inner, or over the default
// keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Keyer: inner, Prefix: prefix}
}

func (k ScopedKeyer) DocumentKey(namespace, key string) string {
	return k.Prefix + k.Keyer.DocumentKey(namespace, key)
}

func (k ScopedKeyer) GraphKey(docHash string) string {
	return k.Prefix + k.Keyer.GraphKey(docHash)
}

func (k ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Keyer.LayoutKey(graphHash, opts)
}

func (k ScopedKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Keyer.ArtifactKey(viewHash, opts)
}
