package ldapwire

import (
	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/der"
	"github.com/oba-ldap/ldapwire/internal/registry"
)

// Cursor is a borrowed (pointer, length) view over arena-owned DER bytes.
// It is exported so callback and encoder signatures can be written
// directly against it without reaching into internal/der.
type Cursor = der.Cursor

// Arena is a bulk allocator whose contents are released in one operation.
// Exported for the same reason as Cursor.
type Arena = arena.Pool

// NewCursor and NullCursor are re-exported for callback authors building
// outgoing field arrays.
var (
	NewCursor  = der.NewCursor
	NullCursor = der.NullCursor
)

// Context is what a dispatched callback receives: everything the opcode
// router gathered about one incoming operation. Fields is indexed per the
// opcode's table entry (internal/opcode.Table[Opcode]); a null Cursor at
// an optional field's index means "not present on the wire".
type Context = registry.Context

// EndpointFromContext recovers the Endpoint a callback was dispatched
// from. Context.Endpoint is carried as an opaque handle so internal/registry
// does not need to import this package.
func EndpointFromContext(c *Context) *Endpoint {
	ep, _ := c.Endpoint.(*Endpoint)
	return ep
}
