// Package opcode holds the static, build-time opcode table: for each
// opcode 0..30 (the base LDAP application tags) and 31..N (remapped
// extended operations), the DER walk program that parses its body and the
// size of the resulting field-cursor array.
//
// Grounded in RFC 4511 §4.2's CHOICE layouts, reshaped into an
// opcode-indexed walk-program table instead of a struct-per-operation
// decoder.
package opcode

import "github.com/oba-ldap/ldapwire/internal/der"

// Base opcode space. Values match the LDAP APPLICATION tag number with
// the constructed bit stripped.
const (
	BindRequest           = 0
	BindResponse          = 1
	UnbindRequest         = 2
	SearchRequest         = 3
	SearchResultEntry     = 4
	SearchResultDone      = 5
	ModifyRequest         = 6
	ModifyResponse        = 7
	AddRequest            = 8
	AddResponse           = 9
	DelRequest            = 10
	DelResponse           = 11
	ModifyDNRequest       = 12
	ModifyDNResponse      = 13
	CompareRequest        = 14
	CompareResponse       = 15
	AbandonRequest        = 16
	SearchResultReference = 19
	ExtendedRequest       = 23
	ExtendedResponse      = 24
	IntermediateResponse  = 25

	// Base = number of native application-tag opcodes the reject bitmap's
	// word 0 covers (bits 0..26 are live; 31 is the array bound of the
	// base range).
	Base = 31

	// ExtendedOIDField{Request,Response} are the field indices at which
	// the opcode router extracts the OID string before remapping: field
	// index 0 for a request, 4 for a response (the LDAPResult prefix).
	ExtendedOIDFieldRequest  = 0
	ExtendedOIDFieldResponse = 4
)

// Extended (remapped) opcode range.
const (
	StartTLSRequest  = Base + 0
	StartTLSResponse = Base + 1

	PasswdModifyRequest  = Base + 2
	PasswdModifyResponse = Base + 3

	WhoAmIRequest  = Base + 4
	WhoAmIResponse = Base + 5

	CancelRequest  = Base + 6
	CancelResponse = Base + 7

	StartLBURPRequest  = Base + 8
	StartLBURPResponse = Base + 9

	EndLBURPRequest  = Base + 10
	EndLBURPResponse = Base + 11

	LBURPUpdateRequest  = Base + 12
	LBURPUpdateResponse = Base + 13

	TurnRequest  = Base + 14
	TurnResponse = Base + 15

	StartTxnRequest  = Base + 16
	StartTxnResponse = Base + 17

	EndTxnRequest  = Base + 18
	EndTxnResponse = Base + 19

	AbortedTxnResponse = Base + 20

	// NumOpcodes bounds the opcode-indexed arrays (registry, reject
	// bitmap word 1, this table) for both base and extended opcodes.
	NumOpcodes = Base + 21
)

func t(b byte) *byte { return &b }

// Entry describes one opcode's shape: how many fields its body parses
// into and the walk program that fills them. Primitive marks an opcode
// whose body is not a constructed SEQUENCE of sub-TLVs but a single
// primitive value (DelRequest's DN, AbandonRequest's MessageID) — for
// those the router stores the op body's content directly as field 0
// without invoking der.Walk.
type Entry struct {
	Name       string
	FieldCount int
	Program    der.Program
	Primitive  bool
}

var ldapResultFields = der.Program{
	{ExpectTag: t(0x0A), Store: der.StoreContent},             // 0: resultCode (ENUMERATED)
	{ExpectTag: t(0x04), Store: der.StoreContent},             // 1: matchedDN
	{ExpectTag: t(0x04), Store: der.StoreContent},             // 2: diagnosticMessage
	{ExpectTag: t(0xA3), Store: der.StoreRaw, Optional: true}, // 3: referral [3]
}

// Table is indexed by opcode. Entries left zero-valued are unused opcode
// slots that no LDAP operation or extended OID maps to; Valid reports
// false for them, and the parser refuses a frame carrying one with
// StatusUnsupported before any dispatch.
var Table [NumOpcodes]Entry

func init() {
	Table[BindRequest] = Entry{
		Name:       "BindRequest",
		FieldCount: 3,
		Program: der.Program{
			{ExpectTag: t(0x02), Store: der.StoreContent}, // version
			{ExpectTag: t(0x04), Store: der.StoreContent}, // name
			{Store: der.StoreRaw},                         // authentication CHOICE
		},
	}
	Table[BindResponse] = Entry{
		Name:       "BindResponse",
		FieldCount: 4,
		Program: append(append(der.Program{}, ldapResultFields[:3]...),
			der.Step{ExpectTag: t(0x87), Store: der.StoreContent, Optional: true}, // serverSaslCreds [7]
		),
	}
	Table[UnbindRequest] = Entry{Name: "UnbindRequest", FieldCount: 0, Primitive: true}
	Table[SearchRequest] = Entry{
		Name:       "SearchRequest",
		FieldCount: 8,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent}, // baseObject
			{ExpectTag: t(0x0A), Store: der.StoreContent}, // scope
			{ExpectTag: t(0x0A), Store: der.StoreContent}, // derefAliases
			{ExpectTag: t(0x02), Store: der.StoreContent}, // sizeLimit
			{ExpectTag: t(0x02), Store: der.StoreContent}, // timeLimit
			{ExpectTag: t(0x01), Store: der.StoreContent}, // typesOnly
			{Store: der.StoreRaw},                         // filter CHOICE
			{ExpectTag: t(0x30), Store: der.StoreRaw},     // attributes SEQUENCE OF
		},
	}
	Table[SearchResultEntry] = Entry{
		Name:       "SearchResultEntry",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent}, // objectName
			{ExpectTag: t(0x30), Store: der.StoreRaw},     // attributes
		},
	}
	Table[SearchResultDone] = Entry{Name: "SearchResultDone", FieldCount: 4, Program: ldapResultFields}
	Table[ModifyRequest] = Entry{
		Name:       "ModifyRequest",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent}, // object
			{ExpectTag: t(0x30), Store: der.StoreRaw},     // changes
		},
	}
	Table[ModifyResponse] = Entry{Name: "ModifyResponse", FieldCount: 4, Program: ldapResultFields}
	Table[AddRequest] = Entry{
		Name:       "AddRequest",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent}, // entry
			{ExpectTag: t(0x30), Store: der.StoreRaw},     // attributes
		},
	}
	Table[AddResponse] = Entry{Name: "AddResponse", FieldCount: 4, Program: ldapResultFields}
	Table[DelRequest] = Entry{Name: "DelRequest", FieldCount: 1, Primitive: true}
	Table[DelResponse] = Entry{Name: "DelResponse", FieldCount: 4, Program: ldapResultFields}
	Table[ModifyDNRequest] = Entry{
		Name:       "ModifyDNRequest",
		FieldCount: 4,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent},                 // entry
			{ExpectTag: t(0x04), Store: der.StoreContent},                 // newrdn
			{ExpectTag: t(0x01), Store: der.StoreContent},                 // deleteoldrdn
			{ExpectTag: t(0x80), Store: der.StoreContent, Optional: true}, // newSuperior [0]
		},
	}
	Table[ModifyDNResponse] = Entry{Name: "ModifyDNResponse", FieldCount: 4, Program: ldapResultFields}
	Table[CompareRequest] = Entry{
		Name:       "CompareRequest",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x04), Store: der.StoreContent}, // entry
			{ExpectTag: t(0x30), Store: der.StoreRaw},     // ava
		},
	}
	Table[CompareResponse] = Entry{Name: "CompareResponse", FieldCount: 4, Program: ldapResultFields}
	Table[AbandonRequest] = Entry{Name: "AbandonRequest", FieldCount: 1, Primitive: true}
	Table[SearchResultReference] = Entry{Name: "SearchResultReference", FieldCount: 1, Primitive: true}
	Table[ExtendedRequest] = Entry{
		Name:       "ExtendedRequest",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x80), Store: der.StoreContent},                 // requestName [0]
			{ExpectTag: t(0x81), Store: der.StoreRaw, Optional: true}, // requestValue [1]
		},
	}
	Table[ExtendedResponse] = Entry{
		Name:       "ExtendedResponse",
		FieldCount: 6,
		Program: append(append(der.Program{}, ldapResultFields...),
			der.Step{ExpectTag: t(0x8A), Store: der.StoreContent, Optional: true}, // responseName [10]
			der.Step{ExpectTag: t(0x8B), Store: der.StoreRaw, Optional: true},     // responseValue [11]
		),
	}
	Table[IntermediateResponse] = Entry{
		Name:       "IntermediateResponse",
		FieldCount: 2,
		Program: der.Program{
			{ExpectTag: t(0x80), Store: der.StoreContent, Optional: true},
			{ExpectTag: t(0x81), Store: der.StoreRaw, Optional: true},
		},
	}

	optionalRaw := func(n int) der.Program {
		p := make(der.Program, n)
		for i := range p {
			p[i] = der.Step{Store: der.StoreRaw, Optional: true}
		}
		return p
	}

	Table[StartTLSRequest] = Entry{Name: "StartTLSRequest", FieldCount: 0, Primitive: true}
	Table[StartTLSResponse] = Entry{Name: "StartTLSResponse", FieldCount: 4, Program: ldapResultFields}
	Table[PasswdModifyRequest] = Entry{Name: "PasswdModifyRequest", FieldCount: 3, Program: optionalRaw(3)}
	Table[PasswdModifyResponse] = Entry{Name: "PasswdModifyResponse", FieldCount: 1, Program: optionalRaw(1)}
	Table[WhoAmIRequest] = Entry{Name: "WhoAmIRequest", FieldCount: 0, Primitive: true}
	Table[WhoAmIResponse] = Entry{Name: "WhoAmIResponse", FieldCount: 1, Primitive: true}
	Table[CancelRequest] = Entry{Name: "CancelRequest", FieldCount: 1, Program: der.Program{{ExpectTag: t(0x02), Store: der.StoreContent}}}
	Table[CancelResponse] = Entry{Name: "CancelResponse", FieldCount: 4, Program: ldapResultFields}
	Table[StartLBURPRequest] = Entry{Name: "StartLBURPRequest", FieldCount: 2, Program: optionalRaw(2)}
	Table[StartLBURPResponse] = Entry{Name: "StartLBURPResponse", FieldCount: 4, Program: ldapResultFields}
	Table[EndLBURPRequest] = Entry{Name: "EndLBURPRequest", FieldCount: 1, Program: optionalRaw(1)}
	Table[EndLBURPResponse] = Entry{Name: "EndLBURPResponse", FieldCount: 4, Program: ldapResultFields}
	Table[LBURPUpdateRequest] = Entry{Name: "LBURPUpdateRequest", FieldCount: 1, Program: optionalRaw(1)}
	Table[LBURPUpdateResponse] = Entry{Name: "LBURPUpdateResponse", FieldCount: 4, Program: ldapResultFields}
	Table[TurnRequest] = Entry{Name: "TurnRequest", FieldCount: 2, Program: optionalRaw(2)}
	Table[TurnResponse] = Entry{Name: "TurnResponse", FieldCount: 4, Program: ldapResultFields}
	Table[StartTxnRequest] = Entry{Name: "StartTxnRequest", FieldCount: 0, Primitive: true}
	Table[StartTxnResponse] = Entry{Name: "StartTxnResponse", FieldCount: 5, Program: append(append(der.Program{}, ldapResultFields...), der.Step{ExpectTag: t(0x04), Store: der.StoreContent, Optional: true})}
	Table[EndTxnRequest] = Entry{Name: "EndTxnRequest", FieldCount: 2, Program: optionalRaw(2)}
	Table[EndTxnResponse] = Entry{Name: "EndTxnResponse", FieldCount: 5, Program: append(append(der.Program{}, ldapResultFields...), der.Step{ExpectTag: t(0x04), Store: der.StoreContent, Optional: true})}
	Table[AbortedTxnResponse] = Entry{Name: "AbortedTxnResponse", FieldCount: 4, Program: ldapResultFields}
}

// Valid reports whether opcode names a populated table slot.
func Valid(opcode int) bool {
	if opcode < 0 || opcode >= NumOpcodes {
		return false
	}
	return Table[opcode].Name != ""
}

// WordAndBit maps an opcode to its reject-bitmap word (0 for base
// opcodes, 1 for extended) and bit position within that word.
func WordAndBit(opcode int) (word int, bit uint) {
	if opcode < Base {
		return 0, uint(opcode)
	}
	return 1, uint(opcode - Base)
}
