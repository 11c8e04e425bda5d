// Package sbtree implements the sequential copy-on-write B-tree engine
// and its fixed-pool page buffer manager: an embedded, page-oriented,
// append-only index for fixed-size key/value records (§1). Nodes are
// never updated in place; interior levels are rebuilt lazily along an
// active path, and stale child pointers are remapped to their latest
// physical page through that path at read time (§3 I3).
//
// The package owns none of its backing storage — see the storage
// subpackage for the Adapter interface a caller must supply to Open.
package sbtree

import "github.com/ryogrid/sbtree/storage"

// Config describes the fixed shapes Open needs: record geometry, pool
// size, the key comparator, and the storage backend (§4.4 open).
type Config struct {
	// PageSize is the fixed byte size of every page (§3; typical 512).
	PageSize int
	// KeySize is the fixed width of K (§3; typically 4 bytes).
	KeySize int
	// DataSize is the fixed width of the opaque value V.
	DataSize int
	// Frames is P, the number of buffer-pool frames (§4.2; P >= 2).
	Frames int
	// Comparator imposes the key order (§3).
	Comparator Comparator
	// Storage is the page I/O backend the core never inspects (§4.1).
	Storage storage.Adapter
	// Logf, if non-nil, receives low-volume diagnostic lines (a failed
	// leaf write in Put, a failed interior read in update_index). It is
	// never required for correctness —
	// see SPEC_FULL.md's ambient-logging decision.
	Logf func(format string, args ...interface{})
}

// Engine is the single struct through which every operation flows —
// there is no process-wide state (§9 "Global-ish state").
type Engine struct {
	lay  layout
	cmp  Comparator
	pool *BufferPool
	path *activePath

	logf func(format string, args ...interface{})
}

func (e *Engine) log(format string, args ...interface{}) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

func clearUnusedLevels(path *activePath, fromLevel int) {
	for l := fromLevel; l < maxLevels; l++ {
		path.path[l] = InvalidPageID
	}
}

// Open prepares a brand-new tree: a lone root page, marked root and
// interior, with zero separators and one (placeholder) child pointer,
// and an empty write buffer (§4.4 open).
func Open(cfg Config) (*Engine, error) {
	lay := newLayout(cfg.PageSize, cfg.KeySize, cfg.DataSize)
	path := &activePath{}
	pool := NewBufferPool(lay, cfg.Frames, cfg.Storage, path)

	root := pool.RootFrame()
	root.page.reset()
	root.page.setInterior(true)
	root.page.setRoot(true)
	root.page.setChildPtr(0, 0)
	rootID, err := pool.Write(root)
	if err != nil {
		return nil, ErrStorageWrite
	}
	path.path[0] = rootID
	path.levels = 1
	clearUnusedLevels(path, 1)

	pool.WriteBuffer().page.reset()

	return &Engine{
		lay:  lay,
		cmp:  cfg.Comparator,
		pool: pool,
		path: path,
		logf: cfg.Logf,
	}, nil
}

// OpenFromRoot reconstructs engine state from a previously persisted
// root, the only durable anchor after a restart (§1 non-goals: "restart
// reconstructs state from a known root"). levels and nextPageID must
// be whatever the caller last observed via Engine.Levels and
// Engine.NextPageID — this core does not persist them itself (§7
// misuse: the caller owns recovery bookkeeping).
func OpenFromRoot(cfg Config, rootID PageID, levels int, nextPageID PageID) (*Engine, error) {
	lay := newLayout(cfg.PageSize, cfg.KeySize, cfg.DataSize)
	path := &activePath{}
	path.path[0] = rootID
	path.levels = levels
	clearUnusedLevels(path, 1)

	pool := NewBufferPool(lay, cfg.Frames, cfg.Storage, path)
	pool.nextPageID = nextPageID
	pool.WriteBuffer().page.reset()

	return &Engine{
		lay:  lay,
		cmp:  cfg.Comparator,
		pool: pool,
		path: path,
		logf: cfg.Logf,
	}, nil
}

// RootID, Levels and NextPageID expose the durable anchor a caller
// needs to persist outside the core in order to call OpenFromRoot
// after a restart.
func (e *Engine) RootID() PageID     { return e.path.get(0) }
func (e *Engine) Levels() int        { return e.path.levels }
func (e *Engine) NextPageID() PageID { return e.pool.nextPageID }

// Stats reports the buffer pool's hit/read/write counters (§2 design
// note's "simple counters").
func (e *Engine) Stats() (hits, reads, writes uint) { return e.pool.Stats() }

// Close syncs the storage adapter and releases its resources.
func (e *Engine) Close() error {
	if err := e.pool.Sync(); err != nil {
		return err
	}
	return e.pool.Close()
}

// Put appends (key, value) to the open leaf, per §4.4 put. Callers
// MUST supply keys in non-decreasing order (§4.4(3), §7 misuse) — the
// engine performs no intra-page sorting and does not detect violation.
func (e *Engine) Put(key, value []byte) error {
	wb := e.pool.WriteBuffer()
	if wb.page.count() == e.lay.maxLeaf {
		writtenID, err := e.pool.Write(wb)
		if err != nil {
			e.log("sbtree: put: leaf write failed: %v", err)
			return ErrStorageWrite
		}
		if err := e.updateIndex(key, writtenID); err != nil {
			return err
		}
		wb.page.reset()
		wb.pageID = InvalidPageID
	}
	wb.page.appendLeafRecord(key, value)
	return nil
}

// updateIndex walks the active path from the deepest interior level
// upward, rewriting nodes copy-on-write until one has room or a new
// root is grown (§4.4 update_index). key is the first key of the
// not-yet-written subtree that follows the one being closed off
// (childPageID, or — on a cascaded call from flush — the stand-in stop
// key); it is both the upper bound of everything this call finalizes
// and the separator every level promotes.
//
// Separator choice: key is used as the new separator at every level,
// not just the bottom one. A cascaded level is closing off prevPageID
// (the node finalized one level down), and prevPageID's entire content
// is, by construction, bounded above by the very same key that bounds
// the original leaf — every node the cascade touches closes at the
// same threshold simultaneously. Pairing the closed node with its own
// subtree's minimum instead (as opposed to this upper bound) would
// place a separator smaller than keys already stored inside that
// subtree, violating P2; see DESIGN.md's resolved open question for
// the trace that caught this.
//
// Capacity: every level requires count < max_int before accepting a
// new separator. The source text distinguishes a "<" bottom-level
// check from a "<=" higher-level check tied to "the highest level has
// one extra child pointer"; nothing in the header layout supports a
// level-dependent pointer-array width, so this implementation applies
// the same strict bound at every level (recorded as a resolved open
// question in DESIGN.md).
//
// Overflow handling: when a node is full, its still-open rightmost
// pointer (so far covered only by the active-path remap, I3) must be
// finalized with a real value before the node is retired — otherwise
// P2 ("every key in the subtree via child[count] is >= keys[count-1]")
// breaks the instant the node stops being the active one at its level,
// since nothing else would ever populate that slot. So childPageID/the
// cascaded child id is always stamped into the full node's last slot,
// regardless of level, and a brand-new *empty* sibling (count 0, one
// placeholder child — the same shape §3 I5 allows for a never-grown
// root) takes over as the active node at that level. The just-closed
// node's id is what gets threaded up to the parent for its own
// separator-and-pointer insertion; the new empty sibling only needs to
// be reachable via the active-path remap, never directly referenced by
// a stored pointer (recorded as a resolved open question in
// DESIGN.md).
func (e *Engine) updateIndex(key []byte, childPageID PageID) error {
	prevPageID := childPageID
	bottomLevel := e.path.levels - 1

	for l := bottomLevel; l >= 0; l-- {
		f, err := e.pool.ReadInto(e.path.get(l), 0)
		if err != nil {
			e.log("sbtree: update_index: read level %d failed: %v", l, err)
			return ErrStorageRead
		}
		p := f.page

		if p.count() < e.lay.maxInt {
			p.insertSeparatorAppend(key, prevPageID)
			newID, err := e.pool.Write(f)
			if err != nil {
				return ErrStorageWrite
			}
			e.path.set(l, newID)
			return nil
		}

		// Node full: finalize its open rightmost pointer and retire it,
		// then install a fresh empty sibling as the new active node.
		p.setChildPtr(p.count(), prevPageID)
		if l == 0 {
			p.setRoot(false) // no longer reachable as root once growRoot runs
		}
		closedID, err := e.pool.Write(f)
		if err != nil {
			return ErrStorageWrite
		}

		f.page.reset()
		f.page.setInterior(true)
		f.page.setChildPtr(0, 0)
		newNodeID, err := e.pool.Write(f)
		if err != nil {
			return ErrStorageWrite
		}
		e.path.set(l, newNodeID)
		prevPageID = closedID
	}

	// Cascade exhausted every level: grow the root (§4.4 update_index,
	// final paragraph). The old root becomes active_path[1] via
	// growRoot, remapped through the new root's placeholder rightmost
	// pointer exactly as I3 describes for any other level.
	newRoot := e.pool.WriteBuffer()
	newRoot.page.reset()
	newRoot.page.setInterior(true)
	newRoot.page.setRoot(true)
	newRoot.page.insertSeparatorAppend(key, prevPageID)
	newRootID, err := e.pool.Write(newRoot)
	if err != nil {
		return ErrStorageWrite
	}
	e.path.growRoot(newRootID)
	return nil
}

// Get performs a point lookup (§4.4 get). A storage read failure is
// reported as not-found (§7).
func (e *Engine) Get(key []byte, dst []byte) error {
	id := e.path.get(0)
	for l := 0; l < e.path.levels; l++ {
		f, err := e.pool.Read(id)
		if err != nil {
			return ErrNotFound
		}
		p := f.page
		idx := p.findInteriorSlot(e.cmp, key)

		next := p.childPtr(idx)
		if id == e.path.get(l) && idx == p.count() {
			if l+1 >= e.path.levels || e.path.get(l+1) == InvalidPageID {
				return ErrNotFound
			}
			next = e.path.get(l + 1)
		}
		if next == 0 && idx == p.count() {
			return ErrNotFound
		}
		id = next
	}

	f, err := e.pool.Read(id)
	if err != nil {
		return ErrNotFound
	}
	i := f.page.findLeafKey(e.cmp, key)
	if i < 0 {
		return ErrNotFound
	}
	copy(dst, f.page.leafValue(i))
	return nil
}

// Flush persists the open write buffer (if non-empty) and closes the
// tail by calling update_index with a stop key strictly greater than
// every key ever written, then syncs storage (§4.4 flush). Calling
// Flush twice in a row is a no-op the second time (P5): the write
// buffer is already empty, so only Sync runs.
func (e *Engine) Flush() error {
	wb := e.pool.WriteBuffer()
	n := wb.page.count()
	if n == 0 {
		return e.pool.Sync()
	}

	maxKey := append([]byte(nil), wb.page.leafKey(n-1)...)

	writtenID, err := e.pool.Write(wb)
	if err != nil {
		return ErrStorageWrite
	}
	stopKey := e.cmp.Successor(maxKey)
	if err := e.updateIndex(stopKey, writtenID); err != nil {
		return err
	}
	wb.page.reset()
	wb.pageID = InvalidPageID
	return e.pool.Sync()
}
