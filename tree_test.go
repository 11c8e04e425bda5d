package sbtree

import (
	"encoding/binary"
	"testing"

	"github.com/ryogrid/sbtree/storage/memadapter"
)

func newTestEngine(t *testing.T, frames int) *Engine {
	t.Helper()
	e, err := Open(Config{
		PageSize:   512,
		KeySize:    4,
		DataSize:   12,
		Frames:     frames,
		Comparator: Uint32Comparator{},
		Storage:    memadapter.New(),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return e
}

func valueFor(k uint32) []byte {
	v := make([]byte, 12)
	binary.LittleEndian.PutUint32(v, k)
	return v
}

// TestPutGetRoundTrip covers §8 P3 and end-to-end scenario 1 (scaled
// down from 0..1_000_000 for test run time).
func TestPutGetRoundTrip(t *testing.T) {
	e := newTestEngine(t, 5)
	const n = 5000
	for k := uint32(0); k < n; k++ {
		if err := e.Put(u32(k), valueFor(k)); err != nil {
			t.Fatalf("Put(%d) error = %v", k, err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	dst := make([]byte, 12)
	for k := uint32(0); k < n; k++ {
		if err := e.Get(u32(k), dst); err != nil {
			t.Fatalf("Get(%d) error = %v", k, err)
		}
		if got := binary.LittleEndian.Uint32(dst); got != k {
			t.Fatalf("Get(%d) = %d, want %d", k, got, k)
		}
	}

	if err := e.Get(u32(n+1000), dst); err == nil {
		t.Errorf("Get(out-of-range key) succeeded, want not-found")
	}
}

// TestFlushIdempotent covers §8 P5.
func TestFlushIdempotent(t *testing.T) {
	e := newTestEngine(t, 5)
	for k := uint32(0); k < 50; k++ {
		if err := e.Put(u32(k), valueFor(k)); err != nil {
			t.Fatalf("Put(%d) error = %v", k, err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("first Flush() error = %v", err)
	}
	idAfterFirst := e.RootID()
	nextAfterFirst := e.NextPageID()

	if err := e.Flush(); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if e.RootID() != idAfterFirst {
		t.Errorf("RootID changed across idempotent Flush: %d -> %d", idAfterFirst, e.RootID())
	}
	if e.NextPageID() != nextAfterFirst {
		t.Errorf("NextPageID changed across idempotent Flush: %d -> %d", nextAfterFirst, e.NextPageID())
	}
}

// TestSingleLeafNoSplit covers end-to-end scenario 4: inserting exactly
// max_leaf keys (no split before Flush) leaves a single leaf under the
// interior root that Open always allocates (§4.4 open), and both its
// first and last key are found.
func TestSingleLeafNoSplit(t *testing.T) {
	e := newTestEngine(t, 5)
	maxLeaf := e.lay.maxLeaf
	for k := uint32(0); k < uint32(maxLeaf); k++ {
		if err := e.Put(u32(k), valueFor(k)); err != nil {
			t.Fatalf("Put(%d) error = %v", k, err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	dst := make([]byte, 12)
	if err := e.Get(u32(0), dst); err != nil {
		t.Errorf("Get(0) error = %v", err)
	}
	if err := e.Get(u32(uint32(maxLeaf-1)), dst); err != nil {
		t.Errorf("Get(maxLeaf-1) error = %v", err)
	}
}

// TestRootGrowsAfterManyInteriorSplits covers end-to-end scenario 5:
// keys 0..max_leaf*max_int inclusive (one past filling the root's
// separator array exactly) to force the bottom interior level to
// split and the root to grow.
func TestRootGrowsAfterManyInteriorSplits(t *testing.T) {
	e := newTestEngine(t, 5)
	n := uint32(e.lay.maxLeaf * e.lay.maxInt)
	for k := uint32(0); k <= n; k++ {
		if err := e.Put(u32(k), valueFor(k)); err != nil {
			t.Fatalf("Put(%d) error = %v", k, err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if e.Levels() < 3 {
		t.Errorf("Levels() = %d, want >= 3 after %d inserts", e.Levels(), n+1)
	}

	dst := make([]byte, 12)
	for _, k := range []uint32{0, n / 2, n} {
		if err := e.Get(u32(k), dst); err != nil {
			t.Errorf("Get(%d) error = %v", k, err)
		}
	}
}

// TestReopenFromKnownRoot covers end-to-end scenario 6 (durability
// check): a fresh Engine built from a previous instance's RootID,
// Levels and NextPageID can still iterate everything written so far.
func TestReopenFromKnownRoot(t *testing.T) {
	adapter := memadapter.New()
	cfg := Config{
		PageSize:   512,
		KeySize:    4,
		DataSize:   12,
		Frames:     5,
		Comparator: Uint32Comparator{},
		Storage:    adapter,
	}
	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	const n = 500
	for k := uint32(0); k < n; k++ {
		if err := e.Put(u32(k), valueFor(k)); err != nil {
			t.Fatalf("Put(%d) error = %v", k, err)
		}
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	reopened, err := OpenFromRoot(cfg, e.RootID(), e.Levels(), e.NextPageID())
	if err != nil {
		t.Fatalf("OpenFromRoot() error = %v", err)
	}

	it, err := reopened.IterInit(nil, nil)
	if err != nil {
		t.Fatalf("IterInit() error = %v", err)
	}
	count := 0
	for {
		_, _, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	if count != n {
		t.Errorf("reopened iteration yielded %d records, want %d", count, n)
	}
}
