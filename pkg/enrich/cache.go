package enrich

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/schemalens/schemalens-engine/pkg/models"
)

// ComputeSchemaHash returns a stable hash over the sorted set of table
// names. Column or statistics changes do not invalidate the cache, only
// the table-name set does.
func ComputeSchemaHash(schema models.Schema) string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	encoded, _ := json.Marshal(names)
	return fmt.Sprintf("%x", md5.Sum(encoded))
}

type cacheEntry struct {
	Hash string        `json:"hash"`
	Data models.Schema `json:"data"`
}

// CacheStore persists one enrichment result to a JSON file, keyed by
// schema hash. A store instance owns its file and serializes access.
type CacheStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCacheStore creates a cache store backed by the file at path.
// If logger is nil, a no-op logger is used.
func NewCacheStore(path string, logger *zap.Logger) *CacheStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStore{
		path:   path,
		logger: logger.Named("enrich-cache"),
	}
}

// Get returns the cached enrichment if it matches the hash. A missing
// or unreadable cache file is treated as a miss.
func (c *CacheStore) Get(hash string) (models.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("discarding unreadable cache file", zap.Error(err))
		return nil, false
	}
	if entry.Hash != hash || entry.Data == nil {
		return nil, false
	}
	return entry.Data, true
}

// Put stores the enrichment under the hash, replacing any prior entry.
func (c *CacheStore) Put(hash string, schema models.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	encoded, err := json.Marshal(cacheEntry{Hash: hash, Data: schema})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, encoded, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
