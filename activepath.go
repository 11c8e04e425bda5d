package sbtree

// maxLevels bounds tree depth at compile time, matching §5's "levels
// is bounded by a compile-time constant (8 in the reference)" — this
// is what lets active_path live in a fixed array instead of a slice,
// so no allocation is needed after Open (§5 "Memory").
const maxLevels = 8

// activePath is the in-memory shadow described in §3/§4.4: the
// logical page ids of the current root down to the interior node
// above the open leaf. Every descent must remap its stalest pointer
// through this array (I3) rather than trust a persisted interior
// page's stored child id.
type activePath struct {
	path   [maxLevels]PageID
	levels int
}

func (a *activePath) get(level int) PageID {
	return a.path[level]
}

func (a *activePath) set(level int, id PageID) {
	a.path[level] = id
}

// growRoot shifts every existing level down by one slot to make room
// for a new root at index 0, per §4.4 update_index's root-growth step.
func (a *activePath) growRoot(newRootID PageID) {
	for l := a.levels; l > 0; l-- {
		a.path[l] = a.path[l-1]
	}
	a.path[0] = newRootID
	a.levels++
}
