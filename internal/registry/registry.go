// Package registry implements the per-opcode callback registry: a flat,
// opcode-indexed array of type-erased dispatch entries, plus a by-name
// builder that places each named callback into the matching array slot.
//
// A C union lets a by-opcode array and a by-name struct occupy the same
// memory; Go has no union type, so this package takes the direct
// redesign instead: ByName is an ordinary struct of named Func fields,
// and its Build method copies each field into a Registry array at a
// fixed index, so dispatch-by-opcode and authoring-by-name always select
// the same slot. Reshaped from a map-based OID dispatch table into this
// array-indexed form.
package registry

import (
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/opcode"
)

// Status is the result of invoking a callback: the handful of error
// kinds a stage can report, plus success (zero value).
type Status int

const (
	StatusOK Status = iota
	StatusMalformed
	StatusUnsupported
	StatusOutOfMemory
	StatusRetry
	StatusIO
	StatusPrecondition
)

// Context is the generic by-opcode callback signature's argument: every
// piece of information the opcode router has gathered about one incoming
// operation. Endpoint is carried as an opaque handle (type-erased at this
// layer) so this package does not import the root Endpoint type and
// create an import cycle; callers type-assert it back.
type Context struct {
	Endpoint  any
	MessageID uint32
	Opcode    int
	Fields    []der.Cursor
	Controls  der.Cursor

	retained bool
}

// Retain marks this exchange's query arena as still needed after the
// callback returns, for a pipelined request whose response has not been
// sent yet: the messageID registry, not the callback, owns the arena's
// lifetime once retained. The router ends the arena itself when Retain
// was never called, or when the registry already holds a live slot for
// the same messageID and cannot take it.
func (c *Context) Retain() { c.retained = true }

// Retained reports whether Retain was called during dispatch.
func (c *Context) Retained() bool { return c.retained }

// Func is the by-opcode callback type: endpoint, message id, opcode,
// field cursors, and controls in, a Status out. The query arena is not
// passed to the callback: the opcode router keeps it and ends it after
// the callback returns unless Context.Retain was called.
type Func func(*Context) Status

// Registry is the opcode-indexed, by-opcode dispatch view. The zero value
// has every slot empty (nil), which the opcode router treats as
// StatusUnsupported.
type Registry struct {
	slots [opcode.NumOpcodes]Func
}

// Set places fn at opcode's slot directly. Exists for callers that
// genuinely want to dispatch by raw opcode number; ByName.Build is the
// normal way to populate a Registry.
func (r *Registry) Set(op int, fn Func) {
	r.slots[op] = fn
}

// Get returns the callback registered for op, or nil if the slot is
// empty.
func (r *Registry) Get(op int) Func {
	if op < 0 || op >= len(r.slots) {
		return nil
	}
	return r.slots[op]
}

// ByName is the by-name authoring view: one named field per operation the
// opcode table defines. Unused operations may be left nil.
type ByName struct {
	BindRequest   Func
	BindResponse  Func
	UnbindRequest Func

	SearchRequest         Func
	SearchResultEntry     Func
	SearchResultDone      Func
	SearchResultReference Func

	ModifyRequest  Func
	ModifyResponse Func

	AddRequest  Func
	AddResponse Func

	DelRequest  Func
	DelResponse Func

	ModifyDNRequest  Func
	ModifyDNResponse Func

	CompareRequest  Func
	CompareResponse Func

	AbandonRequest Func

	ExtendedRequest      Func
	ExtendedResponse     Func
	IntermediateResponse Func

	StartTLSRequest  Func
	StartTLSResponse Func

	PasswdModifyRequest  Func
	PasswdModifyResponse Func

	WhoAmIRequest  Func
	WhoAmIResponse Func

	CancelRequest  Func
	CancelResponse Func

	StartLBURPRequest   Func
	StartLBURPResponse  Func
	EndLBURPRequest     Func
	EndLBURPResponse    Func
	LBURPUpdateRequest  Func
	LBURPUpdateResponse Func

	TurnRequest  Func
	TurnResponse Func

	StartTxnRequest    Func
	StartTxnResponse   Func
	EndTxnRequest      Func
	EndTxnResponse     Func
	AbortedTxnResponse Func
}

// Build copies every non-nil named field into its assigned opcode slot,
// returning a ready-to-dispatch Registry. Named field and opcode index
// are guaranteed to agree because this is the only place either is
// written.
func (n ByName) Build() *Registry {
	r := &Registry{}
	set := func(op int, fn Func) {
		if fn != nil {
			r.Set(op, fn)
		}
	}
	set(opcode.BindRequest, n.BindRequest)
	set(opcode.BindResponse, n.BindResponse)
	set(opcode.UnbindRequest, n.UnbindRequest)
	set(opcode.SearchRequest, n.SearchRequest)
	set(opcode.SearchResultEntry, n.SearchResultEntry)
	set(opcode.SearchResultDone, n.SearchResultDone)
	set(opcode.SearchResultReference, n.SearchResultReference)
	set(opcode.ModifyRequest, n.ModifyRequest)
	set(opcode.ModifyResponse, n.ModifyResponse)
	set(opcode.AddRequest, n.AddRequest)
	set(opcode.AddResponse, n.AddResponse)
	set(opcode.DelRequest, n.DelRequest)
	set(opcode.DelResponse, n.DelResponse)
	set(opcode.ModifyDNRequest, n.ModifyDNRequest)
	set(opcode.ModifyDNResponse, n.ModifyDNResponse)
	set(opcode.CompareRequest, n.CompareRequest)
	set(opcode.CompareResponse, n.CompareResponse)
	set(opcode.AbandonRequest, n.AbandonRequest)
	set(opcode.ExtendedRequest, n.ExtendedRequest)
	set(opcode.ExtendedResponse, n.ExtendedResponse)
	set(opcode.IntermediateResponse, n.IntermediateResponse)
	set(opcode.StartTLSRequest, n.StartTLSRequest)
	set(opcode.StartTLSResponse, n.StartTLSResponse)
	set(opcode.PasswdModifyRequest, n.PasswdModifyRequest)
	set(opcode.PasswdModifyResponse, n.PasswdModifyResponse)
	set(opcode.WhoAmIRequest, n.WhoAmIRequest)
	set(opcode.WhoAmIResponse, n.WhoAmIResponse)
	set(opcode.CancelRequest, n.CancelRequest)
	set(opcode.CancelResponse, n.CancelResponse)
	set(opcode.StartLBURPRequest, n.StartLBURPRequest)
	set(opcode.StartLBURPResponse, n.StartLBURPResponse)
	set(opcode.EndLBURPRequest, n.EndLBURPRequest)
	set(opcode.EndLBURPResponse, n.EndLBURPResponse)
	set(opcode.LBURPUpdateRequest, n.LBURPUpdateRequest)
	set(opcode.LBURPUpdateResponse, n.LBURPUpdateResponse)
	set(opcode.TurnRequest, n.TurnRequest)
	set(opcode.TurnResponse, n.TurnResponse)
	set(opcode.StartTxnRequest, n.StartTxnRequest)
	set(opcode.StartTxnResponse, n.StartTxnResponse)
	set(opcode.EndTxnRequest, n.EndTxnRequest)
	set(opcode.EndTxnResponse, n.EndTxnResponse)
	set(opcode.AbortedTxnResponse, n.AbortedTxnResponse)
	return r
}

// responseOpcodes is the static bitmask of opcodes that are responses,
// consulted by the endpoint before falling back to the primary registry
// when a by-opresp registry is set.
var responseOpcodes = map[int]bool{
	opcode.BindResponse: true, opcode.SearchResultEntry: true, opcode.SearchResultDone: true,
	opcode.SearchResultReference: true, opcode.ModifyResponse: true, opcode.AddResponse: true,
	opcode.DelResponse: true, opcode.ModifyDNResponse: true, opcode.CompareResponse: true,
	opcode.ExtendedResponse: true, opcode.IntermediateResponse: true,
	opcode.StartTLSResponse: true, opcode.PasswdModifyResponse: true, opcode.WhoAmIResponse: true,
	opcode.CancelResponse: true, opcode.StartLBURPResponse: true, opcode.EndLBURPResponse: true,
	opcode.LBURPUpdateResponse: true, opcode.TurnResponse: true, opcode.StartTxnResponse: true,
	opcode.EndTxnResponse: true, opcode.AbortedTxnResponse: true,
}

// IsResponseOpcode reports whether op is a known response opcode, backed
// by the static bitmask above.
func IsResponseOpcode(op int) bool {
	return responseOpcodes[op]
}
