package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webquery-dev/webquery/pkg/fetch"
)

// ParseFunc turns a raw response body into the JSON value to cache and
// return. The default parser validates that the body is JSON and passes
// it through unchanged.
type ParseFunc func(body []byte) (json.RawMessage, error)

// Config holds the per-instance configuration of a Manager.
type Config struct {
	// Namespace isolates this manager's entries from other consumers.
	Namespace string

	// DefaultTTL applies when a request does not set one.
	DefaultTTL time.Duration

	// DefaultRetry is the base retry policy; per-request overrides are
	// merged on top of it.
	DefaultRetry fetch.Policy

	// Store overrides the default file store (in-memory for tests,
	// Redis for shared deployments).
	Store Store

	// Fetcher overrides the default retrying fetcher.
	Fetcher *fetch.Fetcher
}

// Request describes one FetchWithCache call. It is constructed fresh per
// call and not retained by the Manager.
type Request struct {
	// URL is the request target and, absent Key, the cache identity.
	URL string

	// TTL overrides the manager's DefaultTTL when positive.
	TTL time.Duration

	// Key overrides the derived cache key.
	Key string

	// Options are passed through to the HTTP layer.
	Options fetch.Options

	// Retry is a partial policy override merged over DefaultRetry.
	Retry *fetch.PolicyOverride

	// BypassCache skips the cache read; the response is still written back.
	BypassCache bool

	// Parse overrides the default JSON parser.
	Parse ParseFunc
}

// Manager is the public facade over key derivation, the store, and the
// retrying fetcher.
//
// Store failures are absorbed here: they are logged at debug level and
// degrade to a cache miss or a no-op write, because the cache is strictly
// an optimization. Fetch, HTTP, and parse failures propagate unmodified.
type Manager struct {
	store   Store
	fetcher *fetch.Fetcher
	cfg     Config
	logger  zerolog.Logger
}

// NewManager creates a Manager. Zero-value config fields fall back to a
// file store under the namespace, a default fetcher, and a one hour TTL.
func NewManager(cfg Config) *Manager {
	if cfg.Namespace == "" {
		cfg.Namespace = "webquery"
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 1 * time.Hour
	}
	if cfg.DefaultRetry.BackoffMultiplier == 0 {
		cfg.DefaultRetry = fetch.DefaultPolicy()
	}

	store := cfg.Store
	if store == nil {
		store = NewFileStore(cfg.Namespace)
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(nil)
	}

	return &Manager{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  log.With().Str("component", "cache-manager").Str("namespace", cfg.Namespace).Logger(),
	}
}

// Key derives the cache key for an identifier and parameter set.
func (m *Manager) Key(identifier string, params map[string]string) string {
	return DeriveKey(identifier, params)
}

// Cached returns the cached value for key if present and fresher than
// ttl (the manager default when ttl <= 0). Store failures degrade to a
// miss.
func (m *Manager) Cached(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	if ttl <= 0 {
		ttl = m.cfg.DefaultTTL
	}

	entry, err := m.store.Read(ctx, key, ttl)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("read").Inc()
			m.logger.Debug().Err(err).Str("key", key).Msg("Cache read failed")
		}
		CacheMisses.WithLabelValues(m.cfg.Namespace).Inc()
		return nil, false
	}

	CacheHits.WithLabelValues(m.cfg.Namespace).Inc()
	m.logger.Debug().Str("key", key).Dur("age", entry.Age()).Msg("Cache hit")
	return entry.Data, true
}

// SetCached writes a value under key. Failures are logged and absorbed.
func (m *Manager) SetCached(ctx context.Context, key string, data json.RawMessage) {
	if err := m.store.Write(ctx, key, data); err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		m.logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// ClearCache removes all entries in the namespace and returns the count
// removed.
func (m *Manager) ClearCache(ctx context.Context) (int, error) {
	n, err := m.store.Clear(ctx)
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		return n, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// FetchWithCache returns the cached value for the request when fresh,
// otherwise fetches, parses, writes through, and returns the fresh value.
//
// Nothing is cached on any failure path: retry exhaustion and classified
// HTTP errors propagate before parsing, and a parse failure propagates
// before the write.
func (m *Manager) FetchWithCache(ctx context.Context, req Request) (json.RawMessage, error) {
	key := req.Key
	if key == "" {
		key = DeriveKey(req.URL, nil)
	}

	if !req.BypassCache {
		if data, ok := m.Cached(ctx, key, req.TTL); ok {
			return data, nil
		}
	}

	policy := m.cfg.DefaultRetry.Merge(req.Retry)
	resp, err := m.fetcher.Do(ctx, req.URL, req.Options, policy)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetch.NewStatusError(resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	parse := req.Parse
	if parse == nil {
		parse = parseJSON
	}
	parsed, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	m.SetCached(ctx, key, parsed)
	m.logger.Debug().Str("key", key).Str("url", req.URL).Int("bytes", len(parsed)).Msg("Cached response")

	return parsed, nil
}

// parseJSON is the default parser: accept any valid JSON body as-is.
func parseJSON(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, errors.New("response is not valid JSON")
	}
	return json.RawMessage(body), nil
}
