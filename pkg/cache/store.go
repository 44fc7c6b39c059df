package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCacheMiss indicates the requested key was not found, was corrupt,
	// or had expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store persists one JSON entry per key and evaluates expiration at read
// time against a reader-supplied TTL.
//
// Implementations return errors; deciding whether a failure matters is
// the Manager's job (it absorbs them — the cache is an optimization, not
// a correctness requirement).
type Store interface {
	// Read loads the entry for key. It returns ErrCacheMiss when the key
	// is absent or the entry is older than ttl; expired entries are
	// deleted best-effort. A corrupt entry yields ErrInvalidEntry.
	Read(ctx context.Context, key string, ttl time.Duration) (*Entry, error)

	// Write persists data under key, stamping it with the current time.
	Write(ctx context.Context, key string, data json.RawMessage) error

	// Clear removes every entry in the store's namespace and returns the
	// count removed. A namespace that does not exist yet counts as zero.
	Clear(ctx context.Context) (int, error)
}

const (
	storeDirPerms  = 0o700
	storeFilePerms = 0o600
	entrySuffix    = ".json"
)

// FileStore is a filesystem-backed Store. Entries live as {key}.json files
// inside {os.TempDir()}/{namespace}-cache/, shared by any process using
// the same namespace. Writes replace the file atomically via rename, so
// concurrent writers race as last-writer-wins rather than corrupting.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file store for the given namespace. The backing
// directory is created lazily on first write.
func NewFileStore(namespace string) *FileStore {
	return &FileStore{
		dir:    filepath.Join(os.TempDir(), namespace+"-cache"),
		logger: log.With().Str("component", "cache-store").Str("namespace", namespace).Logger(),
	}
}

// NewFileStoreDir creates a file store at an explicit directory instead
// of the namespace-derived default, e.g. a test-scoped temp dir.
func NewFileStoreDir(dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: log.With().Str("component", "cache-store").Str("dir", dir).Logger(),
	}
}

// Dir returns the backing directory path.
func (s *FileStore) Dir() string {
	return s.dir
}

// Read implements Store.
func (s *FileStore) Read(_ context.Context, key string, ttl time.Duration) (*Entry, error) {
	path := s.path(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry: drop it so the next write starts clean.
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.Expired(ttl) {
		s.logger.Debug().Str("key", key).Dur("age", entry.Age()).Msg("Cache entry expired")
		_ = os.Remove(path)
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Write implements Store.
func (s *FileStore) Write(_ context.Context, key string, data json.RawMessage) error {
	if err := os.MkdirAll(s.dir, storeDirPerms); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	raw, err := json.Marshal(newEntry(data))
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Write to a temp file and rename so readers never observe a partial
	// entry.
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, storeFilePerms); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cache file: %w", err)
	}

	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) (int, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list cache directory: %w", err)
	}

	removed := 0
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), entrySuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, d.Name())); err != nil {
			s.logger.Debug().Err(err).Str("file", d.Name()).Msg("Failed to remove cache file")
			continue
		}
		removed++
	}

	return removed, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+entrySuffix)
}
