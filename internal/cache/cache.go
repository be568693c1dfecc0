package cache

import "context"

// Prefix namespaces every key this module writes, so an oracle cache can
// share a Redis instance with unrelated data.
const Prefix = "agrotm:oracles:weather:"

// Cache is the best-effort key-value contract used by the orchestrator.
// Implementations must swallow backend failures: a broken read reports a
// miss and a broken write is a no-op. Caching is a performance
// optimization, never a correctness dependency.
type Cache interface {
	// Get returns the stored value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key with the given TTL in seconds.
	Set(ctx context.Context, key string, value []byte, ttlSeconds int)
}
