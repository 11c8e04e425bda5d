// Package memadapter is a reference storage.Adapter that keeps every
// page in a single in-memory buffer. It stands in for the "data-file
// ingestion" and "benchmark harness" external collaborators named out
// of scope in spec §1 — useful wherever the whole index fits in RAM,
// or for a test fixture that wants a real storage.Adapter without
// touching a filesystem.
package memadapter

import (
	"fmt"

	"github.com/dsnet/golib/memfile"
)

// Adapter backs storage.Adapter with a growable byte slice accessed
// through github.com/dsnet/golib/memfile's io.ReaderAt/io.WriterAt
// implementation, the same pattern the teacher used memfile for in
// its own benchmark fixtures.
type Adapter struct {
	buf  []byte
	file *memfile.File
}

// New creates an empty in-memory adapter.
func New() *Adapter {
	a := &Adapter{}
	a.file = memfile.New(a.buf)
	return a
}

func (a *Adapter) ensure(n int) {
	if len(a.buf) >= n {
		return
	}
	grown := make([]byte, n)
	copy(grown, a.buf)
	a.buf = grown
	a.file = memfile.New(a.buf)
}

func (a *Adapter) ReadPage(id uint32, size int, dst []byte) error {
	if len(dst) != size {
		return fmt.Errorf("memadapter: dst length %d != page size %d", len(dst), size)
	}
	off := int64(id) * int64(size)
	end := int(off) + size
	if end > len(a.buf) {
		// Unwritten page: reads as all-zero, matching a freshly
		// formatted flash region.
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	n, err := a.file.ReadAt(dst, off)
	if err != nil || n != size {
		return fmt.Errorf("memadapter: short read of page %d: %w", id, err)
	}
	return nil
}

func (a *Adapter) WritePage(id uint32, size int, src []byte) error {
	if len(src) != size {
		return fmt.Errorf("memadapter: src length %d != page size %d", len(src), size)
	}
	off := int64(id) * int64(size)
	a.ensure(int(off) + size)
	n, err := a.file.WriteAt(src, off)
	if err != nil || n != size {
		return fmt.Errorf("memadapter: short write of page %d: %w", id, err)
	}
	return nil
}

func (a *Adapter) Sync() error { return nil }

func (a *Adapter) Close() error {
	return a.file.Close()
}
