// Package pagedfile implements an append-only sequence of fixed-size pages
// indexed by a monotonically increasing page id, the storage primitive
// each of a relation's four paged files (data, tsig, psig, bsig) is built
// on; the info file is read and written whole, outside this package. Adapted from chirst-cdb/pager.Pager: same storage abstraction
// and LRU page cache, but no B-tree page shape, no dirty-page tracking and
// no journal, since the signature index is single-writer and does not
// attempt crash recovery (spec.md §1 Non-goals, §5).
package pagedfile

import (
	"fmt"

	"github.com/relndb/sigidx/page"
	"github.com/relndb/sigidx/pagedfile/cache"
)

const cacheSize = 256

// PagedFile is one named, append-only file of fixed-size pages.
type PagedFile struct {
	store    storage
	npages   int
	pageCach *cache.LRU
}

// Open opens (or creates) the paged file backing path, or an in-memory
// buffer when useMemory is true. npages is the caller's authoritative page
// count, read from the relation's persisted counters.
func Open(useMemory bool, path string, npages int) (*PagedFile, error) {
	var s storage
	var err error
	if useMemory {
		s = newMemoryStorage()
	} else {
		s, err = newFileStorage(path)
	}
	if err != nil {
		return nil, err
	}
	return &PagedFile{
		store:    s,
		npages:   npages,
		pageCach: cache.New(cacheSize),
	}, nil
}

// NPages returns the number of pages currently allocated.
func (f *PagedFile) NPages() int { return f.npages }

// AddPage appends a new zero-initialized page and returns it. The page's
// content is written through to storage immediately so later reads (from a
// cold cache) see a defined, zeroed page rather than relying on short-read
// zero-fill semantics beyond the intended page count.
func (f *PagedFile) AddPage() (*page.Page, error) {
	id := f.npages
	p := page.New(id)
	if _, err := f.store.WriteAt(p.Content(), int64(id)*page.Size); err != nil {
		return nil, fmt.Errorf("pagedfile: error allocating page %d: %w: %w", id, ErrIO, err)
	}
	f.npages++
	cached := make([]byte, page.Size)
	copy(cached, p.Content())
	f.pageCach.Add(id, cached)
	return p, nil
}

// GetPage reads the page with the given id, preferring the cache.
func (f *PagedFile) GetPage(id int) (*page.Page, error) {
	if v, hit := f.pageCach.Get(id); hit {
		cp := make([]byte, page.Size)
		copy(cp, v)
		return page.FromBytes(id, cp), nil
	}
	buf := make([]byte, page.Size)
	if _, err := f.store.ReadAt(buf, int64(id)*page.Size); err != nil {
		return nil, fmt.Errorf("pagedfile: error reading page %d: %w: %w", id, ErrIO, err)
	}
	f.pageCach.Add(id, buf)
	cp := make([]byte, page.Size)
	copy(cp, buf)
	return page.FromBytes(id, cp), nil
}

// PutPage writes p back to storage and refreshes the cache entry.
func (f *PagedFile) PutPage(p *page.Page) error {
	if _, err := f.store.WriteAt(p.Content(), int64(p.Number())*page.Size); err != nil {
		return fmt.Errorf("pagedfile: error writing page %d: %w: %w", p.Number(), ErrIO, err)
	}
	f.pageCach.Add(p.Number(), p.Content())
	return nil
}

// GetLastPage returns the last allocated page, or allocates the first page
// if none exists yet.
func (f *PagedFile) GetLastPage() (*page.Page, error) {
	if f.npages == 0 {
		return f.AddPage()
	}
	return f.GetPage(f.npages - 1)
}

// Close releases the underlying storage, if it holds an open file handle.
// In-memory paged files have nothing to release.
func (f *PagedFile) Close() error {
	if c, ok := f.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
