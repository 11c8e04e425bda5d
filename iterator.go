package sbtree

// Iterator is a single-pass, non-restartable cursor producing
// (key, value) pairs with keys in [minKey, maxKey] in ascending order
// (§4.5). It snapshots the node ids it is traversing separately from
// the engine's active_path — concurrent Put calls reassign pool frames
// but never mutate an already-persisted page, so the snapshot stays
// valid as long as the caller honors §5's "don't interleave mutating
// calls with an active iterator".
type Iterator struct {
	e *Engine

	minKey, maxKey []byte // nil means unbounded on that side

	levels int             // number of interior levels, snapshotted at IterInit
	path   [maxLevels + 1]PageID // path[0..levels-1]: interior node ids; path[levels]: leaf id
	idx    [maxLevels + 1]int    // per-level cursor (child-pointer index, or leaf record index)

	done bool
}

// IterInit primes a cursor over [minKey, maxKey] (either bound may be
// nil for unbounded), descending from the current root and leaning
// left into the subtree that can contain minKey at every level (§4.5
// init).
func (e *Engine) IterInit(minKey, maxKey []byte) (*Iterator, error) {
	it := &Iterator{e: e, minKey: minKey, maxKey: maxKey, levels: e.path.levels}

	id := e.path.get(0)
	for l := 0; l < it.levels; l++ {
		f, err := e.pool.Read(id)
		if err != nil {
			return nil, ErrStorageRead
		}
		p := f.page

		childIdx := 0
		if minKey != nil {
			childIdx = p.findInteriorSlot(e.cmp, minKey)
		}
		it.path[l] = id
		it.idx[l] = childIdx

		next := p.childPtr(childIdx)
		if id == e.path.get(l) && childIdx == p.count() && l+1 < e.path.levels {
			next = e.path.get(l + 1)
		}
		id = next
	}

	f, err := e.pool.Read(id)
	if err != nil {
		return nil, ErrStorageRead
	}
	recIdx := 0
	if minKey != nil {
		recIdx = f.page.findLeafLowerBound(e.cmp, minKey)
	}
	it.path[it.levels] = id
	it.idx[it.levels] = recIdx
	return it, nil
}

// descendFirst re-descends from fromLevel+1 down to the leaf, always
// choosing each level's first (leftmost) child — used after advance()
// bumps a cursor (§4.5 next step 2: "choosing the first child at each
// lower level").
func (it *Iterator) descendFirst(fromLevel int) bool {
	f, err := it.e.pool.Read(it.path[fromLevel])
	if err != nil {
		return false
	}
	p := f.page
	idx := it.idx[fromLevel]
	next := p.childPtr(idx)
	if it.path[fromLevel] == it.e.path.get(fromLevel) && idx == p.count() && fromLevel+1 < it.e.path.levels {
		next = it.e.path.get(fromLevel + 1)
	}
	id := next

	for l := fromLevel + 1; l < it.levels; l++ {
		f2, err := it.e.pool.Read(id)
		if err != nil {
			return false
		}
		it.path[l] = id
		it.idx[l] = 0
		p2 := f2.page
		next2 := p2.childPtr(0)
		if id == it.e.path.get(l) && p2.count() == 0 && l+1 < it.e.path.levels {
			next2 = it.e.path.get(l + 1)
		}
		id = next2
	}
	it.path[it.levels] = id
	it.idx[it.levels] = 0
	return true
}

// advance walks the per-level cursors bottom-up, bumping the first
// level whose cursor is not yet at its bound (interior: count()+1
// pointers; leaf: count() records), per §4.5 next step 1.
func (it *Iterator) advance() bool {
	for level := it.levels - 1; level >= 0; level-- {
		f, err := it.e.pool.Read(it.path[level])
		if err != nil {
			return false
		}
		if it.idx[level]+1 <= f.page.count() {
			it.idx[level]++
			return it.descendFirst(level)
		}
	}
	return false
}

// Next returns the next (key, value) pair in range, or ok == false
// once the iterator is exhausted (§4.5 next).
func (it *Iterator) Next() (key, value []byte, ok bool) {
	if it.done {
		return nil, nil, false
	}
	for {
		leafFrame, err := it.e.pool.Read(it.path[it.levels])
		if err != nil {
			it.done = true
			return nil, nil, false
		}
		leafPage := leafFrame.page

		if it.idx[it.levels] >= leafPage.count() {
			if !it.advance() {
				it.done = true
				return nil, nil, false
			}
			continue
		}

		k := leafPage.leafKey(it.idx[it.levels])
		v := leafPage.leafValue(it.idx[it.levels])
		it.idx[it.levels]++

		if it.minKey != nil && it.e.cmp.Compare(k, it.minKey) < 0 {
			continue
		}
		if it.maxKey != nil && it.e.cmp.Compare(k, it.maxKey) > 0 {
			it.done = true
			return nil, nil, false
		}
		return append([]byte(nil), k...), append([]byte(nil), v...), true
	}
}
