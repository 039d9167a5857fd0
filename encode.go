package ldapwire

import (
	"errors"

	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/extoid"
	"github.com/oba-ldap/ldapwire/internal/opcode"
	"github.com/oba-ldap/ldapwire/internal/queue"
)

var errMissingField = errors.New("ldapwire: missing mandatory field")

// DefaultEncoder implements the inverse of DefaultParser: it packs an
// operation's fields back into a wire LDAPMessage and enqueues the
// result for transmission. An op in the extended (remapped) range is
// first rewrapped as an ExtendedRequest/ExtendedResponse using the OID
// extoid.ReverseLookup recovers; a remapped *Response opcode is wrapped
// with a synthesized successful LDAPResult, since the caller supplies only
// the operation's own fields (e.g. WhoAmIResponse's single authzId) and
// not the LDAPResult every ExtendedResponse carries on the wire — a
// caller needing a non-success result encodes opcode.ExtendedResponse
// directly with the full LDAPResult fields instead.
func DefaultEncoder(ep *Endpoint, msgID uint32, op int, fields []Cursor, controls Cursor) Status {
	wireOp := op
	wireFields := fields
	if op >= opcode.Base {
		entry, isResponse, ok := extoid.ReverseLookup(op)
		if !ok {
			return StatusUnsupported
		}
		var innerBody []byte
		if opcode.Table[op].Primitive {
			if len(fields) > 0 {
				innerBody = fields[0].Bytes()
			}
		} else {
			var err error
			innerBody, err = packFields(fields, opcode.Table[op])
			if err != nil {
				return StatusMalformed
			}
		}
		if isResponse {
			wireOp = opcode.ExtendedResponse
			wireFields = []Cursor{
				der.NewCursor(der.EncodeMinimalInt(nil, 0)), // resultCode = success(0)
				der.NewCursor([]byte{}),                     // matchedDN = ""
				der.NewCursor([]byte{}),                     // diagnosticMessage = ""
				der.NullCursor(),                             // referral
				der.NewCursor([]byte(entry.OID)),            // responseName
				wrapTLV(0x8B, innerBody),
			}
		} else {
			wireOp = opcode.ExtendedRequest
			wireFields = []Cursor{
				der.NewCursor([]byte(entry.OID)),
				wrapTLV(0x81, innerBody),
			}
		}
	}

	body, err := packFields(wireFields, opcode.Table[wireOp])
	if err != nil {
		return StatusMalformed
	}

	tagByte := byte(0x60) | byte(wireOp)
	if opcode.Table[wireOp].Primitive {
		tagByte = byte(0x40) | byte(wireOp)
		if len(wireFields) > 0 {
			body = wireFields[0].Bytes()
		} else {
			body = nil
		}
	}
	opTLV := appendTLV(nil, tagByte, body)

	msgIDBody := der.EncodeMinimalInt(nil, msgID&^(1<<31))
	content := appendTLV(nil, 0x02, msgIDBody)
	content = append(content, opTLV...)
	if !controls.IsNull() {
		content = append(content, controls.Bytes()...)
	}
	frame := appendTLV(nil, 0x30, content)

	itemArena := arena.New()
	buf := itemArena.Alloc(len(frame))
	copy(buf, frame)

	ep.OutQueue.Enqueue(&queue.Item{
		Arena:   itemArena,
		Cursors: []der.Cursor{der.NewCursor(buf)},
	})
	return StatusOK
}

// packFields packs fields according to entry's walk program: a StoreContent
// step wraps the field's content bytes in entry.Program[i].ExpectTag; a
// StoreRaw step copies the field's bytes verbatim, since the caller is
// expected to have supplied the complete TLV for CHOICE-typed and other
// structurally ambiguous fields (see DESIGN.md). A Primitive entry has no
// program and is packed entirely by the caller (DefaultEncoder handles it
// directly).
func packFields(fields []Cursor, entry opcode.Entry) ([]byte, error) {
	if entry.Primitive {
		return nil, nil
	}
	var body []byte
	for i, step := range entry.Program {
		if i >= len(fields) || fields[i].IsNull() {
			if step.Optional {
				continue
			}
			return nil, errMissingField
		}
		switch step.Store {
		case der.StoreContent:
			body = appendTLV(body, *step.ExpectTag, fields[i].Bytes())
		case der.StoreRaw:
			body = append(body, fields[i].Bytes()...)
		case der.StoreSkip:
		}
	}
	return body, nil
}

func appendTLV(dst []byte, tag byte, content []byte) []byte {
	dst = append(dst, tag)
	dst = der.AppendLength(dst, len(content))
	return append(dst, content...)
}

func wrapTLV(tag byte, content []byte) Cursor {
	return der.NewCursor(appendTLV(nil, tag, content))
}
