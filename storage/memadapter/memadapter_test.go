package memadapter

import (
	"bytes"
	"testing"
)

func TestReadUnwrittenPageIsZero(t *testing.T) {
	a := New()
	dst := make([]byte, 64)
	for i := range dst {
		dst[i] = 0xFF
	}
	if err := a.ReadPage(3, 64, dst); err != nil {
		t.Fatalf("ReadPage() error = %v", err)
	}
	want := make([]byte, 64)
	if !bytes.Equal(dst, want) {
		t.Errorf("ReadPage(unwritten) = %v, want all-zero", dst)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	a := New()
	src := bytes.Repeat([]byte{0xAB}, 64)
	if err := a.WritePage(5, 64, src); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	dst := make([]byte, 64)
	if err := a.ReadPage(5, 64, dst); err != nil {
		t.Fatalf("ReadPage() error = %v", err)
	}
	if !bytes.Equal(dst, src) {
		t.Errorf("ReadPage() = %v, want %v", dst, src)
	}
}

func TestWriteReadMultiplePages(t *testing.T) {
	a := New()
	for id := uint32(0); id < 10; id++ {
		buf := bytes.Repeat([]byte{byte(id)}, 32)
		if err := a.WritePage(id, 32, buf); err != nil {
			t.Fatalf("WritePage(%d) error = %v", id, err)
		}
	}
	for id := uint32(0); id < 10; id++ {
		dst := make([]byte, 32)
		if err := a.ReadPage(id, 32, dst); err != nil {
			t.Fatalf("ReadPage(%d) error = %v", id, err)
		}
		want := bytes.Repeat([]byte{byte(id)}, 32)
		if !bytes.Equal(dst, want) {
			t.Errorf("page %d = %v, want %v", id, dst, want)
		}
	}
}

func TestClose(t *testing.T) {
	a := New()
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
