package sbtree

import "github.com/ryogrid/sbtree/storage"

// notModified is the "this frame holds no dirty interior node" marker
// for Frame.modifiedLevel (§4.2 mark_modified/clear_modified).
const notModified = -1

// Frame is one of the pool's P page-sized buffers (§2 Buffer Pool).
// Frame 0 is always the dedicated write buffer for the open leaf
// (§4.2); it is never chosen by the victim policy below.
type Frame struct {
	idx           int
	pageID        PageID
	page          *page
	modifiedLevel int // notModified, or the active-path level this frame shadows
}

// BufferPool owns P page-sized frames and decides which frame serves a
// given physical page, per §4.2. It is the sole owner of physical
// page allocation (next_page_id / next_page_write_id in §3).
type BufferPool struct {
	lay     layout
	storage storage.Adapter
	path    *activePath

	frames []*Frame

	nextPageID PageID // next physical id to assign on Write (§3)
	nextBuffer int    // round-robin pointer over [2, P-1] (§4.2)
	lastHit    PageID

	hits, reads, writes uint
}

// NewBufferPool allocates the P frames described in §4.2. P must be
// at least 2 (frame 0: write buffer, frame 1: root/general pool).
func NewBufferPool(lay layout, p int, adapter storage.Adapter, path *activePath) *BufferPool {
	if p < 2 {
		panic("sbtree: buffer pool needs at least 2 frames")
	}
	bp := &BufferPool{
		lay:     lay,
		storage: adapter,
		path:    path,
		frames:  make([]*Frame, p),
	}
	for i := 0; i < p; i++ {
		bp.frames[i] = &Frame{
			idx:           i,
			pageID:        InvalidPageID,
			page:          bindPage(lay, make([]byte, lay.pageSize)),
			modifiedLevel: notModified,
		}
	}
	if p >= 3 {
		bp.nextBuffer = 2
	}
	return bp
}

// WriteBuffer returns frame 0, the dedicated open-leaf buffer.
func (bp *BufferPool) WriteBuffer() *Frame { return bp.frames[0] }

// Stats reports the hit/read/write counters §2's design note calls
// for, used by Engine to surface pool pressure to an embedder without
// printing from inside the core (see SPEC_FULL.md's ambient-logging
// decision).
func (bp *BufferPool) Stats() (hits, reads, writes uint) {
	return bp.hits, bp.reads, bp.writes
}

// frameFor reports the frame currently resident with pageID, if any.
func (bp *BufferPool) frameFor(id PageID) *Frame {
	for _, f := range bp.frames {
		if f.pageID == id {
			return f
		}
	}
	return nil
}

// victim picks a frame to reuse for a miss on pageID, per §4.2:
//
//	P = 2: always frame 1.
//	P = 3: frame 2.
//	P >= 4: frame 1 if pageID is the current root; else the first
//	        empty frame in [2, P-1]; else round-robin over [2, P-1]
//	        skipping whichever frame currently holds lastHit.
func (bp *BufferPool) victim(id PageID) *Frame {
	p := len(bp.frames)
	switch {
	case p == 2:
		return bp.frames[1]
	case p == 3:
		return bp.frames[2]
	default:
		if id == bp.path.get(0) {
			return bp.frames[1]
		}
		for i := 2; i < p; i++ {
			if bp.frames[i].pageID == InvalidPageID {
				return bp.frames[i]
			}
		}
		for tries := 0; tries < p; tries++ {
			cand := bp.frames[bp.nextBuffer]
			bp.nextBuffer++
			if bp.nextBuffer >= p {
				bp.nextBuffer = 2
			}
			if cand.pageID != bp.lastHit {
				return cand
			}
		}
		return bp.frames[bp.nextBuffer]
	}
}

// evictIfDirty persists f if it is shadowing a dirty interior node
// before it gets reused for a different page, and — crucially —
// rewrites active_path[f.modifiedLevel] to the page's new physical
// location, per §4.2: "the pool first issues write of that frame and
// updates active_path[modified[i]] to the new physical id."
func (bp *BufferPool) evictIfDirty(f *Frame) error {
	if f.modifiedLevel == notModified {
		return nil
	}
	level := f.modifiedLevel
	newID, err := bp.Write(f)
	if err != nil {
		return err
	}
	bp.path.set(level, newID)
	return nil
}

// Read returns the frame holding pageID, loading it from storage into
// a victim frame on a miss.
func (bp *BufferPool) Read(id PageID) (*Frame, error) {
	if f := bp.frameFor(id); f != nil {
		bp.hits++
		bp.lastHit = id
		return f, nil
	}
	f := bp.victim(id)
	if err := bp.evictIfDirty(f); err != nil {
		return nil, err
	}
	if err := bp.storage.ReadPage(uint32(id), bp.lay.pageSize, f.page.data); err != nil {
		return nil, ErrStorageRead
	}
	f.page.decodeHeader()
	f.pageID = id
	f.modifiedLevel = notModified
	bp.reads++
	bp.lastHit = id
	return f, nil
}

// ReadInto force-reads pageID into a specific frame, used by the tree
// engine to keep the open interior rewrite pinned in a known slot
// (§4.2 read_into; used by update_index's "read active_path[l] into a
// known frame (frame 0)").
func (bp *BufferPool) ReadInto(id PageID, frameNo int) (*Frame, error) {
	f := bp.frames[frameNo]
	if err := bp.evictIfDirty(f); err != nil {
		return nil, err
	}
	if err := bp.storage.ReadPage(uint32(id), bp.lay.pageSize, f.page.data); err != nil {
		return nil, ErrStorageRead
	}
	f.page.decodeHeader()
	f.pageID = id
	f.modifiedLevel = notModified
	bp.reads++
	return f, nil
}

// Write allocates the next physical page id, stamps it into the
// frame's header, persists it via the storage adapter, clears the
// frame's dirty marker, and returns the new physical id (§4.2 write).
func (bp *BufferPool) Write(f *Frame) (PageID, error) {
	id := bp.nextPageID
	bp.nextPageID++
	f.page.id = id
	f.page.encodeHeader()
	if err := bp.storage.WritePage(uint32(id), bp.lay.pageSize, f.page.data); err != nil {
		return 0, ErrStorageWrite
	}
	f.pageID = id
	f.modifiedLevel = notModified
	bp.writes++
	return id, nil
}

// MarkModified records that f holds a dirty interior node belonging to
// the given active-path level, so a later eviction knows which
// active_path slot to rewrite (§4.2 mark_modified).
func (bp *BufferPool) MarkModified(f *Frame, level int) {
	f.modifiedLevel = level
}

// ClearModified clears the dirty marker of any frame currently holding
// pageID (§4.2 clear_modified). The frame stays resident, so the next
// Read of pageID is still a hit.
func (bp *BufferPool) ClearModified(id PageID) {
	if f := bp.frameFor(id); f != nil {
		f.modifiedLevel = notModified
	}
}

// NewPage binds a fresh, zeroed page of this pool's layout — used for
// scratch copies (the teacher's NewPage/MemCpyPage pattern in
// splitPage/cleanPage) and for frames that don't yet have a physical
// identity.
func (bp *BufferPool) NewPage() *page {
	return bindPage(bp.lay, make([]byte, bp.lay.pageSize))
}

// RootFrame returns frame 1, reserved for the current root per §4.2
// ("Frame 1, when P >= 3, is reserved for the root page"; at P == 2 it
// is also always the frame the §4.2 victim policy hands back for the
// root, so the reservation holds at every pool size this engine
// accepts).
func (bp *BufferPool) RootFrame() *Frame { return bp.frames[1] }

// Sync flushes the underlying storage adapter (§4.4 flush: "fsync the
// storage" after the write buffer and its index updates are persisted).
func (bp *BufferPool) Sync() error { return bp.storage.Sync() }

// Close releases the underlying storage adapter's resources.
func (bp *BufferPool) Close() error { return bp.storage.Close() }
