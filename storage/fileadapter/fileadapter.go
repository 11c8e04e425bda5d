// Package fileadapter is a reference storage.Adapter backed by a real
// file opened for unbuffered, aligned I/O via github.com/ncw/directio.
// It models the "file-on-SD or raw NOR/NAND sector access" backend
// §1 names as out of scope for the core: reads and writes bypass the
// OS page cache the way a microcontroller talking directly to flash
// would, so the buffer pool's own caching (§4.2) is the only cache in
// the path.
package fileadapter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ncw/directio"
)

// Adapter writes one page per aligned slot of size alignedSize (the
// smallest multiple of directio.AlignSize that holds pageSize bytes).
// Every ReadPage/WritePage call round-trips through a single
// directio.AlignedBlock scratch buffer — allocated once at Open, never
// after, matching §5's no-allocation-after-init budget.
type Adapter struct {
	f           *os.File
	pageSize    int
	alignedSize int
	scratch     []byte
}

// Open opens path, creating it if absent (an existing file is not
// truncated), and returns an Adapter whose pages are pageSize bytes
// wide on the logical side.
func Open(path string, pageSize int) (*Adapter, error) {
	f, err := directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fileadapter: open %s: %w", path, err)
	}
	aligned := roundUp(pageSize, directio.AlignSize)
	return &Adapter{
		f:           f,
		pageSize:    pageSize,
		alignedSize: aligned,
		scratch:     directio.AlignedBlock(aligned),
	}, nil
}

func roundUp(n, align int) int {
	if n%align == 0 {
		return n
	}
	return (n/align + 1) * align
}

func (a *Adapter) ReadPage(id uint32, size int, dst []byte) error {
	if size != a.pageSize {
		return fmt.Errorf("fileadapter: page size mismatch: got %d want %d", size, a.pageSize)
	}
	off := int64(id) * int64(a.alignedSize)
	_, err := a.f.ReadAt(a.scratch, off)
	if err != nil {
		if errors.Is(err, io.EOF) {
			for i := range dst {
				dst[i] = 0
			}
			return nil
		}
		return fmt.Errorf("fileadapter: read page %d: %w", id, err)
	}
	copy(dst, a.scratch[:size])
	return nil
}

func (a *Adapter) WritePage(id uint32, size int, src []byte) error {
	if size != a.pageSize {
		return fmt.Errorf("fileadapter: page size mismatch: got %d want %d", size, a.pageSize)
	}
	for i := range a.scratch {
		a.scratch[i] = 0
	}
	copy(a.scratch, src)
	off := int64(id) * int64(a.alignedSize)
	if _, err := a.f.WriteAt(a.scratch, off); err != nil {
		return fmt.Errorf("fileadapter: write page %d: %w", id, err)
	}
	return nil
}

func (a *Adapter) Sync() error {
	return a.f.Sync()
}

func (a *Adapter) Close() error {
	return a.f.Close()
}
