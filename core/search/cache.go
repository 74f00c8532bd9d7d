package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultNumCounters = 1e5
	defaultMaxCost     = 1e7 // ~10MB of cached result sets
	defaultBufferItems = 64
	defaultTTL         = 10 * time.Minute
)

// QueryCacheConfig configures the search result cache.
type QueryCacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	TTL         time.Duration
}

// QueryCache memoizes search results keyed by the full query shape. Any
// dictionary mutation invalidates the whole cache; queries are cheap to
// redo and partial invalidation is not worth tracking.
type QueryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewQueryCache creates a result cache. Zero-valued config fields use
// defaults.
func NewQueryCache(config QueryCacheConfig) (*QueryCache, error) {
	if config.NumCounters <= 0 {
		config.NumCounters = defaultNumCounters
	}
	if config.MaxCost <= 0 {
		config.MaxCost = defaultMaxCost
	}
	if config.BufferItems <= 0 {
		config.BufferItems = defaultBufferItems
	}
	if config.TTL <= 0 {
		config.TTL = defaultTTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &QueryCache{cache: cache, ttl: config.TTL}, nil
}

// queryKey identifies one query shape.
func queryKey(term, field string, limit int, threshold float64) string {
	return strings.Join([]string{
		term,
		field,
		strconv.Itoa(limit),
		fmt.Sprintf("%.3f", threshold),
	}, "|")
}

// Get returns a cached result set for the query, if present.
func (qc *QueryCache) Get(term, field string, limit int, threshold float64) ([]Match, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	if qc.closed {
		return nil, false
	}

	value, found := qc.cache.Get(queryKey(term, field, limit, threshold))
	if !found {
		return nil, false
	}
	matches, ok := value.([]Match)
	return matches, ok
}

// Put stores a result set. Cost is the match count so large result sets
// are evicted before small ones.
func (qc *QueryCache) Put(term, field string, limit int, threshold float64, matches []Match) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	if qc.closed {
		return
	}

	cost := int64(len(matches)) + 1
	qc.cache.SetWithTTL(queryKey(term, field, limit, threshold), matches, cost, qc.ttl)
}

// Clear drops every cached result. Called whenever the dictionary mutates.
func (qc *QueryCache) Clear() {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	if qc.closed {
		return
	}
	qc.cache.Clear()
}

// Close releases the cache.
func (qc *QueryCache) Close() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.closed {
		return
	}
	qc.closed = true
	qc.cache.Close()
}
