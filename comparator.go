package sbtree

import "encoding/binary"

// Comparator imposes the total order over keys that §3 requires. Keys
// are passed as their fixed-size wire encoding (little-endian, as laid
// out in §6), not as native integers — a comparator is free to treat
// them as arbitrary byte strings.
type Comparator interface {
	// Compare returns <0, 0, >0 as a<b, a==b, a>b.
	Compare(a, b []byte) int
	// Successor returns the key that immediately follows k in this
	// order, for use as flush's "one past the last key" stopper
	// separator (§4.4 flush). It panics if k is already the maximum
	// representable key — flush on a comparator without a well defined
	// successor is an open question the spec leaves unresolved (§9);
	// see DESIGN.md.
	Successor(k []byte) []byte
}

// Uint32Comparator orders 4-byte little-endian unsigned integers, the
// "typically 4 bytes" key described in §3.
type Uint32Comparator struct{}

func (Uint32Comparator) Compare(a, b []byte) int {
	av := binary.LittleEndian.Uint32(a)
	bv := binary.LittleEndian.Uint32(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func (Uint32Comparator) Successor(k []byte) []byte {
	v := binary.LittleEndian.Uint32(k)
	if v == ^uint32(0) {
		panic("sbtree: Uint32Comparator.Successor: key is already the maximum uint32")
	}
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v+1)
	return out
}

// Uint64Comparator orders 8-byte little-endian unsigned integers, for
// deployments that need a wider key space than Uint32Comparator.
type Uint64Comparator struct{}

func (Uint64Comparator) Compare(a, b []byte) int {
	av := binary.LittleEndian.Uint64(a)
	bv := binary.LittleEndian.Uint64(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func (Uint64Comparator) Successor(k []byte) []byte {
	v := binary.LittleEndian.Uint64(k)
	if v == ^uint64(0) {
		panic("sbtree: Uint64Comparator.Successor: key is already the maximum uint64")
	}
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v+1)
	return out
}
