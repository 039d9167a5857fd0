// Package ldapwire implements an LDAP (RFC 4511) protocol engine: a
// layered stack of parsers and serializers over a byte stream that
// dispatches individual, fully parsed LDAP operations to user callbacks,
// and accepts operations from user code for encoding and transmission.
//
// The engine itself never retries, never interprets filter semantics, and
// never holds application-level state beyond a query arena per in-flight
// messageID; see internal/der, internal/opcode, internal/extoid,
// internal/registry, internal/msgid, and internal/queue for the pieces it
// is built from.
package ldapwire

import "github.com/oba-ldap/ldapwire/internal/registry"

// Status is the result of a pipeline stage or a dispatched callback.
// Values cover the handful of outcomes a stage can report: success,
// a malformed or unsupported operation, resource exhaustion, a
// would-block signal, an I/O failure, or a precondition violation.
type Status = registry.Status

// Status values, re-exported from internal/registry so callers never need
// to import it directly.
const (
	StatusOK           = registry.StatusOK
	StatusMalformed    = registry.StatusMalformed
	StatusUnsupported  = registry.StatusUnsupported
	StatusOutOfMemory  = registry.StatusOutOfMemory
	StatusRetry        = registry.StatusRetry
	StatusIO           = registry.StatusIO
	StatusPrecondition = registry.StatusPrecondition
)
