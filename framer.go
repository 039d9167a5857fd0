package ldapwire

import (
	"io"

	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
)

// maxFrameLength bounds a single LDAPMessage frame (16 MiB) against a
// hostile or corrupt length prefix claiming an unreasonable size.
const maxFrameLength = 16 * 1024 * 1024

// DefaultFramer reassembles exactly one LDAPMessage frame: it reads the
// SEQUENCE tag and length octets, validates them, then reads the
// remainder of the frame into a freshly allocated per-frame arena. It
// uses io.ReadFull for reassembly under partial reads: blocking I/O plus
// goroutine-per-connection is the idiomatic way to express "read until
// full or error" without hand-rolling scratch-buffer bookkeeping across
// short reads (see DESIGN.md).
func DefaultFramer(ep *Endpoint) (*Arena, Cursor, Status) {
	var tagAndFirstLen [2]byte
	if _, err := io.ReadFull(ep.conn, tagAndFirstLen[:]); err != nil {
		return nil, Cursor{}, StatusIO
	}
	if tagAndFirstLen[0] != 0x30 {
		return nil, Cursor{}, StatusMalformed
	}

	var lenOctets []byte
	contentLen := 0
	if tagAndFirstLen[1]&0x80 == 0 {
		contentLen = int(tagAndFirstLen[1])
	} else {
		nOctets := int(tagAndFirstLen[1] & 0x7F)
		if nOctets == 0 || nOctets > 4 {
			return nil, Cursor{}, StatusMalformed
		}
		lenOctets = make([]byte, nOctets)
		if _, err := io.ReadFull(ep.conn, lenOctets); err != nil {
			return nil, Cursor{}, StatusIO
		}
		for _, b := range lenOctets {
			contentLen = contentLen<<8 | int(b)
		}
	}
	headerLen := 2 + len(lenOctets)
	if contentLen < 0 || headerLen+contentLen > maxFrameLength {
		return nil, Cursor{}, StatusMalformed
	}

	frameArena := arena.New()
	buf := frameArena.Alloc(headerLen + contentLen)
	copy(buf, tagAndFirstLen[:])
	copy(buf[2:], lenOctets)
	if contentLen > 0 {
		if _, err := io.ReadFull(ep.conn, buf[headerLen:]); err != nil {
			frameArena.End()
			return nil, Cursor{}, StatusIO
		}
	}
	return frameArena, der.NewCursor(buf), StatusOK
}
