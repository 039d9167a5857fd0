package ldapwire

import (
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/extoid"
	"github.com/oba-ldap/ldapwire/internal/opcode"
	"github.com/oba-ldap/ldapwire/internal/registry"
)

func tagPtr(b byte) *byte { return &b }

// shallowProgram extracts the outer LDAPMessage SEQUENCE's three top-level
// fields without descending into the operation body: messageID (INTEGER,
// content only), protocolOp (any tag, kept raw so the router can
// re-inspect it by tag), and an optional controls wrapper.
var shallowProgram = der.Program{
	{ExpectTag: tagPtr(0x02), Store: der.StoreContent},
	{Store: der.StoreRaw},
	{ExpectTag: tagPtr(0xA0), Store: der.StoreRaw, Optional: true},
}

// DefaultParser implements the shallow-parse and opcode-router stages as
// one function: decode messageID and protocolOp, derive the base opcode
// from the protocolOp's application tag, remap through the extended-OID
// table when the opcode is ExtendedRequest/ExtendedResponse, fully parse
// the resolved opcode's fields, and dispatch to the matching
// registry.Func. It owns frameArena for the rest of this call: every
// return path either ends it or transfers it to the message-ID registry
// via Context.Retain.
func DefaultParser(ep *Endpoint, frameArena *Arena, frame Cursor) Status {
	body, err := der.EnterSequence(frame)
	if err != nil {
		frameArena.End()
		return StatusMalformed
	}

	var shallow [3]Cursor
	if err := der.Walk(body, shallowProgram, shallow[:]); err != nil {
		frameArena.End()
		return StatusMalformed
	}

	msgIDBytes := shallow[0].Bytes()
	if len(msgIDBytes) == 0 || len(msgIDBytes) > 4 || (len(msgIDBytes) == 4 && msgIDBytes[0]&0x80 != 0) {
		frameArena.End()
		return StatusMalformed
	}
	msgID, err := der.DecodeUint31(shallow[0])
	if err != nil || msgID == 0 {
		frameArena.End()
		return StatusMalformed
	}

	opCursor := shallow[1]
	op := int(opCursor.Tag() & 0x1F)
	if op >= opcode.Base {
		frameArena.End()
		return StatusMalformed
	}
	if !opcode.Valid(op) {
		frameArena.End()
		return StatusUnsupported
	}
	if ep.rejected(op) {
		frameArena.End()
		return StatusUnsupported
	}

	opBody, err := opCursor.TLVContent()
	if err != nil {
		frameArena.End()
		return StatusMalformed
	}

	fields, st := parseFields(opBody, op)
	if st != StatusOK {
		frameArena.End()
		return st
	}

	// Extended-OID remap loop: no mapped OID ever maps back to
	// ExtendedRequest/ExtendedResponse, so this always terminates.
	for op == opcode.ExtendedRequest || op == opcode.ExtendedResponse {
		oidField := opcode.ExtendedOIDFieldRequest
		if op == opcode.ExtendedResponse {
			oidField = opcode.ExtendedOIDFieldResponse
		}
		entry, ok := extoid.Lookup(string(fields[oidField].Bytes()))
		if !ok {
			frameArena.End()
			return StatusUnsupported
		}
		newOp := entry.RequestOpcode
		if op == opcode.ExtendedResponse {
			newOp = entry.ResponseOpcode
		}
		if newOp < 0 || !opcode.Valid(newOp) {
			frameArena.End()
			return StatusUnsupported
		}
		if ep.rejected(newOp) {
			frameArena.End()
			return StatusUnsupported
		}

		newEntry := opcode.Table[newOp]

		// The remapped opcode's own fields live inside the
		// requestValue/responseValue content, not the surrounding
		// ExtendedRequest/Response envelope; the OID sits alongside it
		// at oidField, not inside it. DefaultEncoder packs a
		// non-primitive remapped opcode's fields with exactly newOp's
		// program before wrapping them under requestValue/responseValue,
		// so decode mirrors that by walking the same program over the
		// unwrapped content instead of re-walking the envelope itself.
		valueField := oidField + 1
		var valueContent Cursor
		if valueField < len(fields) && !fields[valueField].IsNull() {
			content, err := fields[valueField].TLVContent()
			if err != nil {
				frameArena.End()
				return StatusMalformed
			}
			valueContent = content
		}
		if newEntry.Primitive {
			newFields := make([]Cursor, newEntry.FieldCount)
			if newEntry.FieldCount > 0 && !valueContent.IsNull() {
				newFields[0] = valueContent
			}
			fields = newFields
		} else {
			fields, st = parseFields(valueContent, newOp)
			if st != StatusOK {
				frameArena.End()
				return st
			}
		}
		op = newOp
	}

	ctx := &registry.Context{
		Endpoint:  ep,
		MessageID: msgID,
		Opcode:    op,
		Fields:    fields,
		Controls:  shallow[2],
	}

	fn := ep.dispatcher(op)
	if fn == nil {
		frameArena.End()
		return StatusUnsupported
	}

	st = fn(ctx)
	if !ctx.Retained() || !ep.MsgIDs.Store(msgID, frameArena) {
		frameArena.End()
	}
	return st
}

// parseFields allocates and fills a field-cursor array for op's table
// entry: a single content cursor for a Primitive opcode, or the result of
// walking op's program otherwise.
func parseFields(opBody Cursor, op int) ([]Cursor, Status) {
	entry := opcode.Table[op]
	fields := make([]Cursor, entry.FieldCount)
	if entry.Primitive {
		if entry.FieldCount > 0 {
			fields[0] = opBody
		}
		return fields, StatusOK
	}
	if err := der.Walk(opBody, entry.Program, fields); err != nil {
		return nil, StatusMalformed
	}
	return fields, StatusOK
}

// dispatcher selects the by-opresp registry for a response opcode when
// the Endpoint's Config defines one, falling back to the primary
// registry otherwise.
func (ep *Endpoint) dispatcher(op int) registry.Func {
	if ep.Config.RespRegistry != nil && registry.IsResponseOpcode(op) {
		if fn := ep.Config.RespRegistry.Get(op); fn != nil {
			return fn
		}
	}
	if ep.Config.Registry == nil {
		return nil
	}
	return ep.Config.Registry.Get(op)
}
