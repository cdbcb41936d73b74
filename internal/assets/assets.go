// Package assets handles locating, loading and caching game asset files.
package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/asadandasad/openrw-editor/pkg/formats"
)

// Library resolves asset names against one or more data directories.
// Legacy files reference each other by bare name with inconsistent casing,
// so lookups are case-insensitive on the base name.
type Library struct {
	index map[string]string // lowercase base name -> absolute path
	cache *Cache
	mu    sync.RWMutex
}

// NewLibrary creates an empty asset library.
func NewLibrary() *Library {
	return &Library{
		index: make(map[string]string),
		cache: NewCache(),
	}
}

// AddDir indexes a directory tree. Directories added later take priority
// when base names collide.
func (l *Library) AddDir(root string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		l.index[strings.ToLower(d.Name())] = path
		return nil
	})
}

// Names returns all indexed base names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.index))
	for name := range l.index {
		names = append(names, name)
	}
	return names
}

// Resolve maps an asset name to its path on disk.
func (l *Library) Resolve(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	path, ok := l.index[strings.ToLower(filepath.Base(name))]
	return path, ok
}

// Load reads an asset's raw bytes, caching the result.
func (l *Library) Load(name string) ([]byte, error) {
	key := strings.ToLower(filepath.Base(name))
	if data, ok := l.cache.Get(key); ok {
		return data, nil
	}

	path, ok := l.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("asset not found: %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}

	l.cache.Set(key, data)
	return data, nil
}

// LoadModel loads and parses a DFF model by name.
func (l *Library) LoadModel(name string) (*formats.Model, error) {
	data, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	model, err := formats.ParseDFF(data)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", name, err)
	}
	base := filepath.Base(name)
	model.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return model, nil
}

// LoadTextures loads and parses a TXD dictionary by name.
func (l *Library) LoadTextures(name string) (*formats.TXD, error) {
	data, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	txd, err := formats.ParseTXD(data)
	if err != nil {
		return nil, fmt.Errorf("parsing textures %s: %w", name, err)
	}
	return txd, nil
}

// Clear drops all cached file contents.
func (l *Library) Clear() {
	l.cache.Clear()
}

// CacheStats returns cache hit/miss counters.
func (l *Library) CacheStats() (hits, misses int) {
	return l.cache.Stats()
}

// Cache is a simple in-memory cache for loaded asset bytes.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
