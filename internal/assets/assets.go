// Package assets resolves and reads asset files from disk, searching the
// asset's own directory first and then configured content directories.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned when a file exists in no search location.
var ErrNotFound = errors.New("file not found")

// Manager reads files through a stamped cache. It is safe for concurrent use.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager with the given content directories.
func NewManager(roots ...string) *Manager {
	m := &Manager{cache: NewCache()}
	for _, r := range roots {
		m.AddRoot(r)
	}
	return m
}

// AddRoot adds a content directory. Roots are searched in reverse order
// (last added = highest priority), after the asset's own directory.
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, filepath.Clean(dir))
	m.mu.Unlock()
}

// Roots returns the configured content directories.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Resolve finds name, which is absolute or relative to base, falling back
// to the content directories for relative names.
func (m *Manager) Resolve(base, name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}

	candidates := []string{filepath.Join(base, name)}
	m.mu.RLock()
	for i := len(m.roots) - 1; i >= 0; i-- {
		candidates = append(candidates, filepath.Join(m.roots[i], name))
	}
	m.mu.RUnlock()

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s (searched %d locations)", ErrNotFound, name, len(candidates))
}

// Load reads a file, serving it from cache while its size and modification
// time are unchanged.
func (m *Manager) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	st := stamp{size: info.Size(), modTime: info.ModTime()}

	if data, ok := m.cache.Get(key, st); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, st, data)
	return data, nil
}

// ReadFile resolves name against base and loads it.
func (m *Manager) ReadFile(base, name string) ([]byte, string, error) {
	path, err := m.Resolve(base, name)
	if err != nil {
		return nil, "", err
	}
	data, err := m.Load(path)
	return data, path, err
}

// Forget drops a cached file so the next Load rereads it.
func (m *Manager) Forget(path string) {
	if key, err := filepath.Abs(path); err == nil {
		path = key
	}
	m.cache.Delete(path)
}

// Cache returns the underlying cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

type stamp struct {
	size    int64
	modTime time.Time
}

type entry struct {
	stamp stamp
	data  []byte
}

// Cache is an in-memory file cache keyed by absolute path.
type Cache struct {
	data map[string]entry
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]entry),
	}
}

// Get returns the cached bytes for key if they match st.
func (c *Cache) Get(key string, st stamp) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok && e.stamp.size == st.size && e.stamp.modTime.Equal(st.modTime) {
		c.hits++
		return e.data, true
	}
	c.misses++
	return nil, false
}

// Set stores an item in cache.
func (c *Cache) Set(key string, st stamp, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{stamp: st, data: data}
}

// Delete removes one item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
