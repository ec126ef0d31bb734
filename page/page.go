// Package page implements the fixed-size page layout shared by the four
// paged files a relation owns (data, tsig, psig, bsig). Unlike chirst-cdb's
// pager.Page, which stores variable-length, sorted key/value entries for a
// B-tree, a signature-index page holds a flat run of equal-size items: a
// 2-byte item-count header followed by itemSize-sized slots appended in
// insertion order, matching original_source/SignatureIndexes' "Page" and
// addrInPage/pageNitems/addOneItem.
package page

import "encoding/binary"

const (
	// Size is the fixed size, in bytes, of every page in every file of a
	// relation.
	Size = 4096
	// headerSize is the width of the item-count header at the start of
	// every page.
	headerSize = 2
)

// Page is a fixed-size byte buffer with a small header recording how many
// fixed-size items it currently holds.
type Page struct {
	content []byte
	number  int
}

// New returns a zero-initialized page with the given page id.
func New(number int) *Page {
	return &Page{content: make([]byte, Size), number: number}
}

// FromBytes wraps an existing content buffer (as read from a PagedFile) in a
// Page. content must be exactly Size bytes and is not copied.
func FromBytes(number int, content []byte) *Page {
	if len(content) != Size {
		panic("page: content must be exactly Size bytes")
	}
	return &Page{content: content, number: number}
}

// Number returns this page's id.
func (p *Page) Number() int { return p.number }

// Content returns the raw backing buffer, suitable for writing back to a
// PagedFile.
func (p *Page) Content() []byte { return p.content }

// NItems returns the number of items currently stored on the page.
func (p *Page) NItems() int {
	return int(binary.LittleEndian.Uint16(p.content[0:headerSize]))
}

func (p *Page) setNItems(n int) {
	binary.LittleEndian.PutUint16(p.content[0:headerSize], uint16(n))
}

// AddOneItem increments the item count header by one. Callers are
// responsible for having already written the item's bytes via AddrInPage.
func (p *Page) AddOneItem() {
	p.setNItems(p.NItems() + 1)
}

// AddrInPage returns the byte offset of the slot'th item of the given
// itemSize, i.e. the offset the caller should copy itemSize bytes to or
// from.
func AddrInPage(slot, itemSize int) int {
	return headerSize + slot*itemSize
}

// Capacity returns how many itemSize-sized slots fit on a page after the
// header.
func Capacity(itemSize int) int {
	return (Size - headerSize) / itemSize
}

// GetItem copies the itemSize bytes at the given slot out of the page.
func (p *Page) GetItem(slot, itemSize int) []byte {
	off := AddrInPage(slot, itemSize)
	out := make([]byte, itemSize)
	copy(out, p.content[off:off+itemSize])
	return out
}

// PutItem copies itemSize bytes into the given slot. It does not update the
// item count; call AddOneItem when appending a new slot.
func (p *Page) PutItem(slot int, item []byte) {
	off := AddrInPage(slot, len(item))
	copy(p.content[off:off+len(item)], item)
}

// CanInsert reports whether one more itemSize-sized item fits on the page.
func (p *Page) CanInsert(itemSize int) bool {
	return p.NItems() < Capacity(itemSize)
}
