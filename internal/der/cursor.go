package der

// Cursor is an immutable (pointer, length) view over bytes owned by an
// arena. A Cursor never owns the memory it references; the arena that
// produced the underlying buffer is responsible for keeping it alive for
// as long as any Cursor derived from it is reachable.
//
// The zero value is the null cursor, used throughout the pipeline to mean
// "field not present".
type Cursor struct {
	data []byte
}

// NewCursor wraps data as a non-null cursor. An empty, non-nil slice is a
// valid present-but-empty cursor; pass nil to get the null cursor.
func NewCursor(data []byte) Cursor {
	return Cursor{data: data}
}

// NullCursor returns the null cursor.
func NullCursor() Cursor { return Cursor{} }

// IsNull reports whether this cursor represents an absent field.
func (c Cursor) IsNull() bool { return c.data == nil }

// Len returns the number of bytes the cursor covers.
func (c Cursor) Len() int { return len(c.data) }

// Bytes returns the raw bytes the cursor covers. The returned slice aliases
// arena memory and must not be retained past the arena's lifetime.
func (c Cursor) Bytes() []byte { return c.data }

// Tag returns the leading tag byte, or 0 for an empty/null cursor.
func (c Cursor) Tag() byte {
	if len(c.data) == 0 {
		return 0
	}
	return c.data[0]
}

// slice returns the sub-cursor [from:to), used internally while walking.
func (c Cursor) slice(from, to int) Cursor {
	return Cursor{data: c.data[from:to]}
}

// TLVContent strips c's own leading tag and length octets, returning a
// cursor over just its content. Used by the opcode router to descend from
// a raw protocolOp cursor (tag included) into the body a walk program
// parses.
func (c Cursor) TLVContent() (Cursor, error) {
	_, off, n, _, err := ReadTagAndLength(c, 0)
	if err != nil {
		return Cursor{}, err
	}
	return c.slice(off, off+n), nil
}
