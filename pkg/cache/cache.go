// Package cache provides pluggable byte caching for pipeline stages.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: directory-backed cache for CLI usage
//   - [RedisCache]: Redis-backed cache for server deployments
//   - [NullCache]: no-op cache for tests and disabled caching
//
// Cache keys are produced by a [Keyer] so that every consumer derives
// keys the same way: expansion results are keyed by term and service
// options, layouts by the content hash of the graph plus layout options,
// and rendered artifacts by the layout hash plus render options.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class. Expansion results are stable for a given
// service and model, so they live longest.
const (
	TTLExpand   = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must treat a missing key as (nil, false, nil).
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ExpandKeyOpts are the options that distinguish expansion cache entries.
type ExpandKeyOpts struct {
	Model      string
	MaxRelated int
}

// LayoutKeyOpts are the options that distinguish layout cache entries.
type LayoutKeyOpts struct {
	Width      float64
	Height     float64
	Iterations int
	K          float64
}

// ArtifactKeyOpts are the options that distinguish rendered artifacts.
type ArtifactKeyOpts struct {
	Format string
}

// Keyer generates cache keys for the different artifact classes.
type Keyer interface {
	// HTTPKey generates a key for raw HTTP response caching.
	HTTPKey(namespace, key string) string

	// ExpandKey generates a key for a term's expansion result.
	ExpandKey(lemma string, opts ExpandKeyOpts) string

	// LayoutKey generates a key for a computed layout.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256 under a class prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey generates a key for raw HTTP response caching.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http", namespace, key)
}

// ExpandKey generates a key for a term's expansion result.
func (DefaultKeyer) ExpandKey(lemma string, opts ExpandKeyOpts) string {
	return hashKey("expand", lemma, opts)
}

// LayoutKey generates a key for a computed layout.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
