package text

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
)

// DefaultCacheSize bounds the process-wide font cache.
const DefaultCacheSize = 64

// Cache hands out fonts by key, keeping at most a fixed number of faces
// alive. It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	fonts *lru.Cache
	log   *zap.Logger
}

func NewCache(maxEntries int, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{fonts: lru.New(maxEntries), log: log.Named("text")}
	c.fonts.OnEvicted = func(key lru.Key, value interface{}) {
		c.log.Debug("evicting font", zap.Stringer("key", key.(FontKey)))
	}
	return c
}

// Get returns the font for key, loading it on a miss.
func (c *Cache) Get(key FontKey) *Font {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.fonts.Get(key); ok {
		return f.(*Font)
	}
	face, err := loadFace(key)
	if err != nil {
		c.log.Warn("falling back to built-in bitmap font", zap.Stringer("key", key), zap.Error(err))
		face = fallbackFace()
	}
	f := newFont(key, face)
	c.fonts.Add(key, f)
	return f
}

// Len returns the number of cached fonts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fonts.Len()
}

var defaultCache = NewCache(DefaultCacheSize, nil)

// Get returns key's font from the process-wide cache.
func Get(key FontKey) *Font {
	return defaultCache.Get(key)
}

// ForStyle returns the font for a resolved style.
func ForStyle(style map[string]string) *Font {
	return Get(KeyFor(style))
}
