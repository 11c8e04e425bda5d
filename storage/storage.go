// Package storage defines the sole external collaborator the sbtree
// core depends on: byte-addressable page I/O by physical page number
// (§4.1). The core never imports a concrete backend — it is handed
// an Adapter at Open and treats the backend's identity, durability
// model, and wear-leveling (if any) as none of its business, the way
// the teacher's BufMgr only ever speaks to interfaces.ParentBufMgr /
// interfaces.ParentPage rather than a concrete host buffer pool.
package storage

// Adapter is the capability set §4.1 names: read_page, write_page,
// close. Implementations keep one fixed-size slot per page id and
// overwrite it on Write, and do not themselves maintain any
// higher-level ordering or metadata (§4.1 semantics). The slot is not
// always at byte offset id*pageSize: memadapter places it there, while
// fileadapter pads every slot to the direct-I/O alignment and places
// it at id times that padded size.
type Adapter interface {
	// ReadPage reads exactly size bytes for page id into dst. dst must
	// have length size.
	ReadPage(id uint32, size int, dst []byte) error
	// WritePage writes exactly size bytes from src to page id's slot.
	// src must have length size.
	WritePage(id uint32, size int, src []byte) error
	// Sync persists any buffered writes durably. flush() (§4.4) calls
	// this after the write-buffer and its index updates are
	// persisted. Not part of the language-neutral §4.1 capability
	// list verbatim, but every concrete backend needs some durability
	// barrier and the teacher's BufMgr.Close plays the same role for
	// its host pool.
	Sync() error
	// Close releases any resources the adapter holds (file handles,
	// in-memory buffers). The core calls this from Engine.Close.
	Close() error
}
