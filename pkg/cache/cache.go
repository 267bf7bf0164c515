// Package cache stores transform results and fetched filter definitions.
//
// # Backends
//
//   - [FileCache]: one file per entry under ~/.cache/talklike, for the CLI
//   - [MemoryCache]: process-local map, the default for `talklike serve`
//   - [RedisCache]: shared cache for several server replicas
//   - [NullCache]: disables caching
//
// All backends store opaque bytes with a TTL. A TTL of zero never expires.
//
// # Keys
//
// A [Keyer] builds keys from content hashes, so editing a filter definition
// invalidates its cached results without explicit eviction:
//
//	k := cache.NewDefaultKeyer()
//	key := k.TransformKey(cache.Hash(definitionJSON), text)
//
// [NewScopedKeyer] prefixes every key, which keeps several deployments apart
// inside one Redis database.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// TTLTransform applies to cached transform results.
	TTLTransform = 24 * time.Hour
	// TTLDefinition applies to definitions fetched from remote sources.
	TTLDefinition = time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// TransformKey addresses the result of running text through the filter
	// whose canonical definition hashes to filterHash.
	TransformKey(filterHash, text string) string
	// DefinitionKey addresses a definition document fetched from source.
	DefinitionKey(source, id string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TransformKey returns "transform:<hash>".
func (DefaultKeyer) TransformKey(filterHash, text string) string {
	return hashKey("transform", filterHash, text)
}

// DefinitionKey returns "definition:<source>:<id>".
func (DefaultKeyer) DefinitionKey(source, id string) string {
	return "definition:" + source + ":" + id
}
