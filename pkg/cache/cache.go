// Package cache provides content-addressed caching for planarity runs.
//
// Verdicts, embedded documents, and rendered artifacts are all keyed by a
// hash of the input document plus the options that shaped the result, so a
// repeated run over the same instance is a lookup instead of a solve.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact class. Verdicts and embeddings are pure
// functions of the document and options, so they only expire to bound
// disk usage.
const (
	TTLVerdict   = 30 * 24 * time.Hour
	TTLEmbedding = 30 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Cache is the storage interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives cache keys for the artifacts a planarity run produces.
type Keyer interface {
	// VerdictKey keys a cluster-planarity verdict for a document hash.
	VerdictKey(docHash string, opts VerdictKeyOpts) string

	// EmbeddingKey keys an embedded output document for a document hash.
	EmbeddingKey(docHash string, opts EmbeddingKeyOpts) string

	// ArtifactKey keys a rendered artifact for a document hash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// VerdictKeyOpts are the options that influence a verdict.
type VerdictKeyOpts struct {
	Solver string
}

// EmbeddingKeyOpts are the options that influence an embedded document.
type EmbeddingKeyOpts struct {
	Solver  string
	Augment bool
}

// ArtifactKeyOpts are the options that influence a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// DefaultKeyer generates hierarchical, hash-based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// VerdictKey generates a key for verdict caching.
func (k *DefaultKeyer) VerdictKey(docHash string, opts VerdictKeyOpts) string {
	return hashKey("verdict", docHash, opts)
}

// EmbeddingKey generates a key for embedded document caching.
func (k *DefaultKeyer) EmbeddingKey(docHash string, opts EmbeddingKeyOpts) string {
	return hashKey("embedding", docHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
