package ldapwire

import (
	"testing"

	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/opcode"
	"github.com/oba-ldap/ldapwire/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeThenParseRoundTripsBindResponse(t *testing.T) {
	cfg := &Config{Registry: &registry.Registry{}}
	var decoded *Context
	cfg.Registry.Set(opcode.BindResponse, func(ctx *Context) Status {
		decoded = ctx
		return StatusOK
	})

	ep := NewEndpoint(cfg)
	st := ep.Send(3, opcode.BindResponse, []Cursor{
		NewCursor(der.EncodeMinimalInt(nil, 0)),
		NewCursor([]byte{}),
		NewCursor([]byte{}),
		NullCursor(),
	}, NullCursor())
	require.Equal(t, StatusOK, st)

	item, ok := ep.OutQueue.Dequeue()
	require.True(t, ok)

	decodeEP := NewEndpoint(cfg)
	a := arena.New()
	st = DefaultParser(decodeEP, a, item.Cursors[0])
	require.Equal(t, StatusOK, st)
	require.NotNil(t, decoded)
	assert.Equal(t, uint32(3), decoded.MessageID)
	assert.Equal(t, opcode.BindResponse, decoded.Opcode)
	assert.Equal(t, []byte{0}, decoded.Fields[0].Bytes())
}

// sampleFieldsFor builds a plausible field-cursor array for entry: a
// single placeholder byte for a Primitive opcode, or one cursor per walk
// step, wrapped as a full TLV for StoreRaw (matching the step's
// ExpectTag when it has one) and as bare content for StoreContent.
func sampleFieldsFor(entry opcode.Entry) []Cursor {
	if entry.Primitive {
		if entry.FieldCount == 0 {
			return nil
		}
		return []Cursor{NewCursor([]byte{0x2A})}
	}
	fields := make([]Cursor, len(entry.Program))
	for i, step := range entry.Program {
		switch step.Store {
		case der.StoreContent:
			fields[i] = NewCursor([]byte{0x2A})
		case der.StoreRaw:
			tag := byte(0x04)
			if step.ExpectTag != nil {
				tag = *step.ExpectTag
			}
			fields[i] = wrapTLV(tag, []byte{0x2A})
		case der.StoreSkip:
			fields[i] = NullCursor()
		}
	}
	return fields
}

// TestEncodeThenParseRoundTripsEveryOpcode walks the entire opcode table
// (base opcodes and every extended/remapped opcode) and checks that
// Send followed by DefaultParser recovers the same opcode and the same
// field bytes for each one. ExtendedRequest/ExtendedResponse themselves
// are skipped: the remap loop in DefaultParser always resolves them to
// a concrete opcode before dispatch, so no callback is ever invoked at
// those two raw opcodes.
func TestEncodeThenParseRoundTripsEveryOpcode(t *testing.T) {
	for op := 0; op < opcode.NumOpcodes; op++ {
		if !opcode.Valid(op) {
			continue
		}
		if op == opcode.ExtendedRequest || op == opcode.ExtendedResponse {
			continue
		}
		op := op
		entry := opcode.Table[op]
		t.Run(entry.Name, func(t *testing.T) {
			cfg := &Config{Registry: &registry.Registry{}}
			var decoded *Context
			cfg.Registry.Set(op, func(ctx *Context) Status {
				decoded = ctx
				return StatusOK
			})

			ep := NewEndpoint(cfg)
			fields := sampleFieldsFor(entry)
			st := ep.Send(7, op, fields, NullCursor())
			require.Equal(t, StatusOK, st, "encode")

			item, ok := ep.OutQueue.Dequeue()
			require.True(t, ok)

			decodeEP := NewEndpoint(cfg)
			a := arena.New()
			st = DefaultParser(decodeEP, a, item.Cursors[0])
			require.Equal(t, StatusOK, st, "decode")
			require.NotNil(t, decoded)
			assert.Equal(t, op, decoded.Opcode)
			require.Len(t, decoded.Fields, len(fields))
			for i := range fields {
				assert.Equal(t, fields[i].Bytes(), decoded.Fields[i].Bytes(), "field %d", i)
			}
		})
	}
}

func TestEncodeExtendedResponseRoundTripsThroughOIDRemap(t *testing.T) {
	cfg := &Config{Registry: &registry.Registry{}}
	var decoded *Context
	cfg.Registry.Set(opcode.WhoAmIResponse, func(ctx *Context) Status {
		decoded = ctx
		return StatusOK
	})

	ep := NewEndpoint(cfg)
	st := ep.Send(9, opcode.WhoAmIResponse, []Cursor{
		NewCursor([]byte("dn:uid=alice,dc=example")),
	}, NullCursor())
	require.Equal(t, StatusOK, st)

	item, ok := ep.OutQueue.Dequeue()
	require.True(t, ok)

	decodeEP := NewEndpoint(cfg)
	a := arena.New()
	st = DefaultParser(decodeEP, a, item.Cursors[0])
	require.Equal(t, StatusOK, st)
	require.NotNil(t, decoded)
	assert.Equal(t, opcode.WhoAmIResponse, decoded.Opcode)
	assert.Equal(t, "dn:uid=alice,dc=example", string(decoded.Fields[0].Bytes()))
}
