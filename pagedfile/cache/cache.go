// Package cache implements the LRU page cache a PagedFile uses to avoid
// re-reading pages that were recently fetched. Adapted from
// chirst-cdb/pager/cache: same map-plus-evict-list LRU, but with no version
// tracking and one cache per PagedFile rather than one per whole database,
// since a relation owns four independent paged files instead of one.
package cache

import "slices"

// LRU is a least-recently-used cache of raw page content keyed by page
// number.
type LRU struct {
	cache map[int][]byte
	// evictList is ordered oldest to newest; index 0 is evicted first.
	evictList []int
	maxSize   int
}

// New creates an LRU cache holding at most maxSize pages.
func New(maxSize int) *LRU {
	return &LRU{
		cache:     map[int][]byte{},
		evictList: []int{},
		maxSize:   maxSize,
	}
}

// Get returns the cached content for key and whether it was present.
func (c *LRU) Get(key int) (value []byte, hit bool) {
	v, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.prioritize(key)
	return v, true
}

// Add inserts or updates key's content, evicting the least recently used
// entry first if the cache is already at capacity.
func (c *LRU) Add(key int, value []byte) {
	if _, ok := c.cache[key]; ok {
		c.prioritize(key)
		c.cache[key] = value
		return
	}
	if c.maxSize == len(c.cache) {
		c.evict()
	}
	c.cache[key] = value
	c.evictList = append(c.evictList, key)
}

// Remove drops key from the cache if present.
func (c *LRU) Remove(key int) {
	if _, ok := c.cache[key]; ok {
		delete(c.cache, key)
		i := slices.Index(c.evictList, key)
		c.evictList = slices.Delete(c.evictList, i, i+1)
	}
}

func (c *LRU) prioritize(key int) {
	i := slices.Index(c.evictList, key)
	c.evictList = append(slices.Delete(c.evictList, i, i+1), key)
}

func (c *LRU) evict() {
	evictKey := c.evictList[0]
	c.evictList = c.evictList[1:]
	delete(c.cache, evictKey)
}
