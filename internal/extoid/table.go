// Package extoid holds the extended-operation OID table: a constant-time,
// side-effect-free mapping from an LDAP extended operation's OID string to
// the pair of opcodes it remaps to.
//
// Reshaped from a runtime-registerable OID-dispatch map into a static,
// build-time table. A Go map keyed by the canonical OID string gives the
// same O(1), allocation-free lookup a generated perfect hash would, at
// the cost of one hash computation per lookup instead of zero. See
// DESIGN.md for why this module does not hand-roll or vendor a
// minimal-perfect-hash generator for an 11-entry table.
package extoid

import (
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/opcode"
)

// Entry binds one extended OID to its remapped request/response opcodes.
type Entry struct {
	OID             string
	RequestOpcode   int
	ResponseOpcode  int
}

var table = map[string]Entry{
	"1.3.6.1.4.1.1466.20037": {
		OID: "1.3.6.1.4.1.1466.20037", RequestOpcode: opcode.StartTLSRequest, ResponseOpcode: opcode.StartTLSResponse,
	},
	"1.3.6.1.4.1.4203.1.11.1": {
		OID: "1.3.6.1.4.1.4203.1.11.1", RequestOpcode: opcode.PasswdModifyRequest, ResponseOpcode: opcode.PasswdModifyResponse,
	},
	"1.3.6.1.4.1.4203.1.11.3": {
		OID: "1.3.6.1.4.1.4203.1.11.3", RequestOpcode: opcode.WhoAmIRequest, ResponseOpcode: opcode.WhoAmIResponse,
	},
	"1.3.6.1.1.8": {
		OID: "1.3.6.1.1.8", RequestOpcode: opcode.CancelRequest, ResponseOpcode: opcode.CancelResponse,
	},
	"1.3.6.1.4.1.4203.1.9.1.3": {
		OID: "1.3.6.1.4.1.4203.1.9.1.3", RequestOpcode: opcode.StartLBURPRequest, ResponseOpcode: opcode.StartLBURPResponse,
	},
	"1.3.6.1.4.1.4203.1.9.1.4": {
		OID: "1.3.6.1.4.1.4203.1.9.1.4", RequestOpcode: opcode.EndLBURPRequest, ResponseOpcode: opcode.EndLBURPResponse,
	},
	"1.3.6.1.4.1.4203.1.9.1.2": {
		OID: "1.3.6.1.4.1.4203.1.9.1.2", RequestOpcode: opcode.LBURPUpdateRequest, ResponseOpcode: opcode.LBURPUpdateResponse,
	},
	"1.3.6.1.4.1.4203.1.9.1.13": {
		OID: "1.3.6.1.4.1.4203.1.9.1.13", RequestOpcode: opcode.TurnRequest, ResponseOpcode: opcode.TurnResponse,
	},
	"1.3.6.1.1.21.1": {
		OID: "1.3.6.1.1.21.1", RequestOpcode: opcode.StartTxnRequest, ResponseOpcode: opcode.StartTxnResponse,
	},
	"1.3.6.1.1.21.3": {
		OID: "1.3.6.1.1.21.3", RequestOpcode: opcode.EndTxnRequest, ResponseOpcode: opcode.EndTxnResponse,
	},
	// Aborted Transaction Notice (RFC 5805 §3) carries no matching request
	// opcode: it is an unsolicited notice carried in an ExtendedResponse, never
	// solicited by a StartTxnRequest/EndTxnRequest pair. RequestOpcode is
	// set to -1, an opcode no ExtendedRequest can ever resolve to, so the
	// request side of the remap loop in parse.go can never select it.
	"1.3.6.1.1.21.4": {
		OID: "1.3.6.1.1.21.4", RequestOpcode: -1, ResponseOpcode: opcode.AbortedTxnResponse,
	},
}

// Lookup returns the table entry for oid and true, or the zero Entry and
// false if oid is not a registered extended operation.
func Lookup(oid string) (Entry, bool) {
	e, ok := table[oid]
	return e, ok
}

// ReverseLookup finds the table entry whose RequestOpcode or ResponseOpcode
// equals op, for the encoder's reverse direction: given a remapped opcode
// a caller wants to send, recover the OID that must appear on the wire.
// isResponse reports which side of the pair op was.
func ReverseLookup(op int) (entry Entry, isResponse bool, ok bool) {
	for _, e := range table {
		if e.RequestOpcode == op {
			return e, false, true
		}
		if e.ResponseOpcode == op {
			return e, true, true
		}
	}
	return Entry{}, false, false
}

// InnerProgram returns the walk program used to parse the extended
// operation's inner requestValue/responseValue once its opcode has been
// resolved — simply the opcode table's own program, since remapped
// extended opcodes are full Table entries like any base opcode.
func InnerProgram(remappedOpcode int) der.Program {
	return opcode.Table[remappedOpcode].Program
}
