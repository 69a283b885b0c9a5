// Package cache stores solved puzzles so repeated requests skip the search.
//
// # Overview
//
// A [Cache] is a byte-oriented key/value store with per-entry expiry. The
// solver stores one entry per distinct puzzle: the minimum cost and the move
// list. The CLI also keeps Graphviz drawings. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a directory; the CLI default
//   - [RedisCache]: a Redis server, for the HTTP service
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// Callers that run without a cache hold a nil [Cache].
//
// # Keys
//
// A [Keyer] derives cache keys. [DefaultKeyer] hashes every input that can
// change a search answer, so two requests share an entry only if they
// describe the same puzzle:
//
//	key := keyer.SolveKey(cache.SolveKeyOpts{Board: text, Types: "A:1,B:10"})
//
// Every key ends in its kind and a digest, "solve:<digest>" or
// "render:<digest>". [KindOf] recovers the kind, which [FileCache] uses to
// file entries and to apply a maximum age per kind.
//
// [ScopedKeyer] prefixes keys to give tenants or environments separate
// namespaces in a shared backend.
package cache

import (
	"context"
	"time"
)

// Common TTLs.
const (
	// SolveTTL is how long solved puzzles are kept. Answers never change, so
	// the limit only bounds storage.
	SolveTTL = 30 * 24 * time.Hour

	// RenderTTL is how long rendered diagrams are kept.
	RenderTTL = 7 * 24 * time.Hour
)

// Cache is a key/value store for serialized results.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
