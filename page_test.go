package sbtree

import (
	"bytes"
	"testing"
)

func u32(v uint32) []byte {
	b := make([]byte, 4)
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return b
}

func newTestLayout() layout {
	return newLayout(512, 4, 12)
}

func TestPageCountAndFlags(t *testing.T) {
	tests := []struct {
		name     string
		interior bool
		root     bool
		count    int
	}{
		{"leaf", false, false, 0},
		{"leaf with records", false, false, 31},
		{"interior", true, false, 5},
		{"root leaf-shaped is impossible but root interior is not", true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := bindPage(newTestLayout(), make([]byte, 512))
			p.setInterior(tt.interior)
			p.setRoot(tt.root)
			p.setCount(tt.count)

			if got := p.count(); got != tt.count {
				t.Errorf("count() = %d, want %d", got, tt.count)
			}
			if got := p.isInterior(); got != tt.interior {
				t.Errorf("isInterior() = %v, want %v", got, tt.interior)
			}
			if got := p.isRoot(); got != tt.root {
				t.Errorf("isRoot() = %v, want %v", got, tt.root)
			}
		})
	}
}

func TestPageHeaderRoundTrip(t *testing.T) {
	p := bindPage(newTestLayout(), make([]byte, 512))
	p.id = 42
	p.setInterior(true)
	p.setRoot(true)
	p.setCount(7)
	p.encodeHeader()

	p2 := bindPage(newTestLayout(), p.data)
	if p2.id != 42 {
		t.Errorf("id = %d, want 42", p2.id)
	}
	if p2.count() != 7 {
		t.Errorf("count() = %d, want 7", p2.count())
	}
	if !p2.isInterior() || !p2.isRoot() {
		t.Errorf("isInterior/isRoot = %v/%v, want true/true", p2.isInterior(), p2.isRoot())
	}
}

func TestLeafRecordsSortedLookup(t *testing.T) {
	p := bindPage(newTestLayout(), make([]byte, 512))
	cmp := Uint32Comparator{}
	for i := uint32(0); i < 10; i++ {
		p.appendLeafRecord(u32(i*2), u32(i*2))
	}
	if p.count() != 10 {
		t.Fatalf("count() = %d, want 10", p.count())
	}
	for i := uint32(0); i < 10; i++ {
		idx := p.findLeafKey(cmp, u32(i*2))
		if idx != int(i) {
			t.Errorf("findLeafKey(%d) = %d, want %d", i*2, idx, i)
		}
	}
	if idx := p.findLeafKey(cmp, u32(1)); idx != -1 {
		t.Errorf("findLeafKey(odd key) = %d, want -1", idx)
	}
}

func TestInteriorSeparatorAppend(t *testing.T) {
	p := bindPage(newTestLayout(), make([]byte, 512))
	p.setInterior(true)
	cmp := Uint32Comparator{}

	p.insertSeparatorAppend(u32(10), PageID(1))
	if p.count() != 1 {
		t.Fatalf("count() = %d, want 1", p.count())
	}
	if p.childPtr(0) != 1 {
		t.Errorf("childPtr(0) = %d, want 1", p.childPtr(0))
	}
	if p.childPtr(1) != 0 {
		t.Errorf("childPtr(1) = %d, want 0 (placeholder)", p.childPtr(1))
	}

	p.insertSeparatorAppend(u32(20), PageID(2))
	if p.count() != 2 {
		t.Fatalf("count() = %d, want 2", p.count())
	}
	if p.childPtr(1) != 2 {
		t.Errorf("childPtr(1) = %d, want 2", p.childPtr(1))
	}

	if idx := p.findInteriorSlot(cmp, u32(5)); idx != 0 {
		t.Errorf("findInteriorSlot(5) = %d, want 0", idx)
	}
	if idx := p.findInteriorSlot(cmp, u32(15)); idx != 1 {
		t.Errorf("findInteriorSlot(15) = %d, want 1", idx)
	}
	if idx := p.findInteriorSlot(cmp, u32(25)); idx != 2 {
		t.Errorf("findInteriorSlot(25) = %d, want 2", idx)
	}
}

func TestMemCpyPage(t *testing.T) {
	src := bindPage(newTestLayout(), make([]byte, 512))
	src.id = 9
	src.setCount(3)
	src.encodeHeader()
	copy(src.leafKey(0), u32(100))

	dst := bindPage(newTestLayout(), make([]byte, 512))
	memCpyPage(dst, src)

	if dst.id != 9 || dst.count() != 3 {
		t.Fatalf("memCpyPage did not copy header: id=%d count=%d", dst.id, dst.count())
	}
	if !bytes.Equal(dst.leafKey(0), u32(100)) {
		t.Errorf("memCpyPage did not copy body")
	}
}
