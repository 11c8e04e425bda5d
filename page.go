package sbtree

import "encoding/binary"

// PageID is the logical/physical page number (§3: "Page ids form a
// dense sequence starting at 0"). Dense and physical coincide in this
// engine — see bufferpool.go.
type PageID uint32

// InvalidPageID is the buffer pool's "frame holds nothing" sentinel
// (§4.2 init: "mark all frames empty (sentinel id 0x7FFFFFFF)").
const InvalidPageID PageID = 0x7FFFFFFF

const (
	// headerSize is the 6-byte page header laid out in §6: page id
	// (u32) + count-and-flags (u16).
	headerSize = 6

	countBias    = 10000
	interiorBias = 10000
	rootBias     = 20000
)

// layout holds the derived, record/key/data-size-dependent constants
// that the codec needs: max_leaf and max_int from §3.
type layout struct {
	pageSize   int
	keySize    int
	dataSize   int
	recordSize int
	maxLeaf    int
	maxInt     int
}

func newLayout(pageSize, keySize, dataSize int) layout {
	recordSize := keySize + dataSize
	maxLeaf := (pageSize - headerSize) / recordSize
	// interior body: max_int separator keys + (max_int+1) child ids,
	// each id a 4-byte page pointer (§3).
	maxInt := (pageSize - headerSize - 4) / (keySize + 4)
	return layout{
		pageSize:   pageSize,
		keySize:    keySize,
		dataSize:   dataSize,
		recordSize: recordSize,
		maxLeaf:    maxLeaf,
		maxInt:     maxInt,
	}
}

// page is an in-memory, decoded view of a single page-sized buffer.
// It never owns its backing bytes — it aliases the page-sized buffer
// handed to bindPage (for pool frames, allocated once in
// NewBufferPool), matching §5's "no allocation after init."
type page struct {
	lay  layout
	id   PageID
	raw  uint16 // encoded count-and-flags, as last read/about to be written
	data []byte // the full page_size buffer, header included
}

func bindPage(lay layout, data []byte) *page {
	p := &page{lay: lay, data: data}
	p.decodeHeader()
	return p
}

func (p *page) decodeHeader() {
	p.id = PageID(binary.LittleEndian.Uint32(p.data[0:4]))
	p.raw = binary.LittleEndian.Uint16(p.data[4:6])
}

func (p *page) encodeHeader() {
	binary.LittleEndian.PutUint32(p.data[0:4], uint32(p.id))
	binary.LittleEndian.PutUint16(p.data[4:6], p.raw)
}

// count masks the low order per §4.3: "consumers must mask before
// arithmetic."
func (p *page) count() int {
	return int(p.raw) % countBias
}

func (p *page) setCount(n int) {
	bias := p.raw - uint16(p.count())
	p.raw = bias + uint16(n)
}

func (p *page) isInterior() bool {
	return p.raw >= interiorBias
}

// isRoot reports the root bias. A root page is always also interior
// in this engine (even a never-grown root is interior-shaped with
// count==0, per §3 I5) so root-only-without-interior never occurs and
// the two bias checks never need to be disambiguated further.
func (p *page) isRoot() bool {
	return p.raw >= rootBias
}

// setInterior/setRoot add the §4.3 bias values to the count field. A
// node can carry both biases at once (root-and-interior, §3 header).
func (p *page) setInterior(v bool) {
	n := p.count()
	root := p.isRoot()
	p.raw = uint16(n)
	if v {
		p.raw += interiorBias
	}
	if root {
		p.raw += rootBias
	}
}

func (p *page) setRoot(v bool) {
	n := p.count()
	interior := p.isInterior()
	p.raw = uint16(n)
	if interior {
		p.raw += interiorBias
	}
	if v {
		p.raw += rootBias
	}
}

func (p *page) reset() {
	for i := range p.data {
		p.data[i] = 0
	}
	p.id = 0
	p.raw = 0
}

// --- leaf body accessors -----------------------------------------

func (p *page) leafKey(i int) []byte {
	off := headerSize + i*p.lay.recordSize
	return p.data[off : off+p.lay.keySize]
}

func (p *page) leafValue(i int) []byte {
	off := headerSize + i*p.lay.recordSize + p.lay.keySize
	return p.data[off : off+p.lay.dataSize]
}

func (p *page) setLeafRecord(i int, key, value []byte) {
	copy(p.leafKey(i), key)
	copy(p.leafValue(i), value)
}

// appendLeafRecord appends at the current count and bumps it. Callers
// are required by §4.4(3) to insert keys in non-decreasing order — the
// page never sorts on write.
func (p *page) appendLeafRecord(key, value []byte) {
	n := p.count()
	p.setLeafRecord(n, key, value)
	p.setCount(n + 1)
}

// findLeafKey binary-searches for an exact key match, returning the
// slot index or -1.
func (p *page) findLeafKey(cmp Comparator, key []byte) int {
	n := p.count()
	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		c := cmp.Compare(p.leafKey(mid), key)
		switch {
		case c == 0:
			return mid
		case c < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// findLeafLowerBound returns the index of the first record whose key
// is >= key (or count() if every key is smaller), for the iterator's
// "lean left into the containing subtree" descent (§4.5 init).
func (p *page) findLeafLowerBound(cmp Comparator, key []byte) int {
	n := p.count()
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp.Compare(p.leafKey(mid), key) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// --- interior body accessors ---------------------------------------

func (p *page) interiorKeyOffset() int {
	return headerSize
}

func (p *page) interiorPtrOffset() int {
	return headerSize + p.lay.maxInt*p.lay.keySize
}

func (p *page) interiorKey(i int) []byte {
	off := p.interiorKeyOffset() + i*p.lay.keySize
	return p.data[off : off+p.lay.keySize]
}

func (p *page) setInteriorKey(i int, key []byte) {
	copy(p.interiorKey(i), key)
}

func (p *page) childPtr(i int) PageID {
	off := p.interiorPtrOffset() + i*4
	return PageID(binary.LittleEndian.Uint32(p.data[off : off+4]))
}

func (p *page) setChildPtr(i int, id PageID) {
	off := p.interiorPtrOffset() + i*4
	binary.LittleEndian.PutUint32(p.data[off:off+4], uint32(id))
}

// findInteriorSlot returns the index of the first separator key
// strictly greater than key — i.e. the child pointer index to descend
// through, per §4.4 get(): "Binary-search the key array for the first
// separator > key; the pointer index is that position."
func (p *page) findInteriorSlot(cmp Comparator, key []byte) int {
	n := p.count()
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp.Compare(p.interiorKey(mid), key) > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// insertSeparatorAppend appends separator `key` at the current count
// and installs `childAtOldLast` into what was, until now, the
// placeholder rightmost pointer; the freshly appended pointer slot
// (the new rightmost) is left as a zero placeholder for the active
// path to cover. This implements the "insert a new separator... append
// the new child pointer, and rewrite the previous last child pointer"
// step of §4.4 update_index.
func (p *page) insertSeparatorAppend(key []byte, childAtOldLast PageID) {
	n := p.count()
	p.setChildPtr(n, childAtOldLast)
	p.setInteriorKey(n, key)
	p.setCount(n + 1)
	p.setChildPtr(n+1, 0)
}

// memCpyPage copies another page's full page_size buffer over dst's,
// matching the teacher's MemCpyPage helper used throughout bltree.go
// for page-shaped scratch copies.
func memCpyPage(dst, src *page) {
	copy(dst.data, src.data)
	dst.decodeHeader()
}
