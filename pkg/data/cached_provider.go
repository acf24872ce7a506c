package data

import (
	"sync"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

type memoryEntry struct {
	data    []types.OHLCV
	expires time.Time
}

// MemoryCache implements DataCache using in-memory storage.
// A zero TTL keeps entries until Clear.
type MemoryCache struct {
	cache map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves data from cache if available
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	entry, exists := c.cache[key]
	c.mutex.RUnlock()
	if !exists {
		return nil, false
	}

	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.mutex.Lock()
		delete(c.cache, key)
		c.mutex.Unlock()
		return nil, false
	}

	// Return a copy to prevent external modifications
	result := make([]types.OHLCV, len(entry.data))
	copy(result, entry.data)
	return result, true
}

// Set stores data in cache
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	cached := make([]types.OHLCV, len(data))
	copy(cached, data)

	entry := memoryEntry{data: cached}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}

	c.mutex.Lock()
	c.cache[key] = entry
	c.mutex.Unlock()
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]memoryEntry)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	log      *logger.Logger
}

// NewCachedProvider creates a new cached data provider backed by an unbounded memory cache
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(0))
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		log:      logger.Nop(),
	}
}

// SetLogger sets the logger used for load/miss messages
func (p *CachedProvider) SetLogger(log *logger.Logger) {
	if log != nil {
		p.log = log.With("data_cache")
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads data with caching. Failed loads are never cached.
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	if cachedData, exists := p.cache.Get(source); exists {
		p.log.Debug("Cache hit for %s (%d records)", source, len(cachedData))
		return cachedData, nil
	}

	p.log.Debug("Loading historical data from %s", source)
	data, err := p.provider.LoadData(source)
	if err != nil {
		p.log.Warning("Failed to load data from %s: %v", source, err)
		return nil, err
	}

	p.cache.Set(source, data)
	p.log.Info("Loaded and cached data from %s (%d records)", source, len(data))
	return data, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() DataCache {
	return p.cache
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}
