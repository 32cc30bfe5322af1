package thumbs

import (
	"container/list"
	"image"
	"os"
	"sync"

	"github.com/justyntemme/panes/internal/debug"
)

// Thumb is a decoded, scaled thumbnail.
type Thumb struct {
	Image    image.Image
	Original image.Point
}

// cacheKey ties an entry to the file version it was decoded from, so an
// edited file misses the cache.
type cacheKey struct {
	path    string
	modTime int64
	size    int64
}

type cacheEntry struct {
	key   cacheKey
	thumb Thumb
}

// Cache is an LRU of decoded thumbnails shared by every pane's scans.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*list.Element
	lru     *list.List // front = most recent
	maxSize int
}

// NewCache creates a cache holding at most maxEntries thumbnails.
func NewCache(maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		entries: make(map[cacheKey]*list.Element),
		lru:     list.New(),
		maxSize: maxEntries,
	}
}

func keyFor(path string, info os.FileInfo) cacheKey {
	return cacheKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}
}

// Get returns the cached thumbnail for this version of the file.
func (c *Cache) Get(path string, info os.FileInfo) (Thumb, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[keyFor(path, info)]
	if !ok {
		return Thumb{}, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).thumb, true
}

// Put stores a thumbnail, evicting the least recently used entries when full.
func (c *Cache) Put(path string, info os.FileInfo, thumb Thumb) {
	key := keyFor(path, info)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).thumb = thumb
		c.lru.MoveToFront(elem)
		return
	}

	for c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		old := oldest.Value.(*cacheEntry)
		delete(c.entries, old.key)
		c.lru.Remove(oldest)
		debug.Log(debug.SCAN, "Cache: evicted %s", old.key.path)
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, thumb: thumb})
}

// Len returns the number of cached thumbnails.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*list.Element)
	c.lru.Init()
	debug.Log(debug.SCAN, "Cache: cleared")
}
