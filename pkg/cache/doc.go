// Package cache provides a persistent, TTL-governed response cache with
// a retrying fetch facade.
//
// The Manager composes three pieces:
//
//   - DeriveKey turns a request identity (URL + parameter set) into a
//     stable 16-hex-character key.
//   - A Store persists one JSON entry per key and evaluates expiration
//     at read time. FileStore (default) keeps entries as {key}.json files
//     under {temp-dir}/{namespace}-cache/; MemoryStore and RedisStore
//     implement the same contract.
//   - fetch.Fetcher performs the HTTP request with exponential-backoff
//     retry and jitter.
//
// TTL is supplied by the reader, not the writer: the store records only
// a write timestamp, so the same cached payload can be fresh for a
// caller with a 1-hour tolerance and stale for one with a 1-minute
// tolerance.
//
// # Basic Usage
//
//	manager := cache.NewManager(cache.Config{
//		Namespace:  "npm-registry",
//		DefaultTTL: time.Hour,
//	})
//
//	data, err := manager.FetchWithCache(ctx, cache.Request{
//		URL: "https://registry.npmjs.org/-/v1/search?text=zerolog",
//	})
//
// The first call performs one network request and writes the cache; an
// identical call within the TTL performs none.
//
// # Failure policy
//
// Store failures never surface through FetchWithCache: they are counted,
// logged at debug level, and degrade to a miss or a no-op write. Fetch,
// HTTP, and parse failures propagate, and nothing is cached on those
// paths. Callers can branch on fetch.ErrNotFound / fetch.ErrUnauthorized
// via errors.Is.
//
// # Concurrency
//
// Two concurrent calls for the same uncached key both miss and both hit
// the upstream (no in-flight deduplication); acceptable for CLI-driven
// call volume. Concurrent writers to one key race as last-writer-wins —
// FileStore replaces the file atomically, so readers never see a partial
// entry.
//
// # Metrics
//
// The package exports Prometheus counters:
//
//   - webquery_cache_hits_total{namespace}
//   - webquery_cache_misses_total{namespace}
//   - webquery_cache_errors_total{operation}
package cache
