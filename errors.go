package sbtree

// ErrCode enumerates the recoverable outcomes the engine can report.
// This is the sum type the design notes call for in place of the
// teacher's integer BLTErr codes: {Ok, NotFound, StorageRead,
// StorageWrite, Struct}.
type ErrCode int

const (
	CodeNone ErrCode = iota
	CodeNotFound
	CodeStorageRead
	CodeStorageWrite
	CodeStruct
)

func (c ErrCode) String() string {
	switch c {
	case CodeNone:
		return "ok"
	case CodeNotFound:
		return "not found"
	case CodeStorageRead:
		return "storage read failed"
	case CodeStorageWrite:
		return "storage write failed"
	case CodeStruct:
		return "tree structure invariant violated"
	default:
		return "unknown error"
	}
}

// Error is the engine's error type. A nil *Error (returned as a nil
// error interface) means success.
type Error struct {
	Code ErrCode
}

func (e *Error) Error() string {
	return e.Code.String()
}

// Is lets errors.Is(err, ErrNotFound) work against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = &Error{Code: CodeNotFound}
	// ErrStorageRead is returned when the storage adapter refuses a
	// read; Get treats it as not-found at the call site, but Put
	// aborts with this error (§7).
	ErrStorageRead = &Error{Code: CodeStorageRead}
	// ErrStorageWrite is returned when the storage adapter refuses a
	// write. The engine's in-memory state, including the active path,
	// is not guaranteed consistent afterward (§7) — the caller must
	// reopen from disk.
	ErrStorageWrite = &Error{Code: CodeStorageWrite}
	// ErrStruct marks a tree-structure invariant violation (a dangling
	// right pointer, an unreadable interior page reached while
	// descending). It never originates from caller input.
	ErrStruct = &Error{Code: CodeStruct}
)
