package ldapwire

import (
	"fmt"
	"net"

	"github.com/oba-ldap/ldapwire/internal/arena"
	"github.com/oba-ldap/ldapwire/internal/msgid"
	"github.com/oba-ldap/ldapwire/internal/obalog"
	"github.com/oba-ldap/ldapwire/internal/opcode"
	"github.com/oba-ldap/ldapwire/internal/queue"
	"github.com/oba-ldap/ldapwire/internal/registry"
)

// nodeNamePort is the port sentinel the Open operation recognizes: when
// the caller passes this value, hostname names a non-TCP endpoint (this
// module dials it as a Unix domain socket path) rather than a DNS/TCP
// target.
const nodeNamePort = 131072

// Config is the static, per-role configuration shared across every
// Endpoint serving the same role: callback registries and the default
// reject bitmap. It is built once and never mutated after any Endpoint
// is opened against it.
type Config struct {
	// Registry dispatches incoming requests and responses by opcode.
	Registry *registry.Registry

	// RespRegistry, if non-nil, is consulted first for opcodes
	// registry.IsResponseOpcode reports true for — a "by-opresp"
	// overlay for a dual client/server role on one Endpoint. Registry
	// is always the fallback.
	RespRegistry *registry.Registry

	// DefaultRejectBitmap seeds each new Endpoint's reject bitmap.
	DefaultRejectBitmap [2]uint32

	// Logger is the base logger every Endpoint derives a per-connection
	// child from via WithRequestID.
	Logger obalog.Logger
}

// FramerFunc reassembles exactly one LDAPMessage frame from the
// Endpoint's input into a fresh per-frame arena and hands the arena and a
// cursor over the full frame (still SEQUENCE-tagged) back for shallow
// parsing. It is the first of the three overridable stage pointers
// (framer, parser, encoder; shallow parsing and opcode routing share the
// one ParseFunc stage) — an
// ordinary function field rather than a strategy interface, matching the
// style of the rest of this package's stage hooks.
type FramerFunc func(ep *Endpoint) (*Arena, Cursor, Status)

// ParseFunc shallow-parses one frame (messageID, protocolOp tag/body,
// optional controls) and routes it to the matching callback. It owns
// frameArena for the remainder of the pipeline: on every exit path it
// either ends frameArena or hands it to the message-ID registry via
// Context.Retain.
type ParseFunc func(ep *Endpoint, frameArena *Arena, frame Cursor) Status

// EncodeFunc serializes one outgoing operation and enqueues it on the
// Endpoint's output queue.
type EncodeFunc func(ep *Endpoint, msgID uint32, op int, fields []Cursor, controls Cursor) Status

// Endpoint is the per-connection mutable state: one bound socket, one
// connection-scope arena, one message-ID registry, one output queue, and
// the reject bitmap and RFC-1823 compatibility scalars users are allowed
// to mutate directly. Config is shared and read-only from here on.
type Endpoint struct {
	Config *Config

	conn net.Conn

	ConnArena *arena.Pool
	MsgIDs    *msgid.Registry
	OutQueue  *queue.Queue

	GetFramer   FramerFunc
	GetParser   ParseFunc
	PutEncoder  EncodeFunc

	RejectBitmap [2]uint32

	// RFC-1823 compatibility scalars, mutated directly by synchronous
	// wrapper callers; the core engine never reads them.
	DerefAliases int
	SizeLimit    int
	TimeLimit    int
	LastError    Status

	Log obalog.Logger
}

// NewEndpoint allocates a fresh Endpoint against cfg with the library's
// default stage functions and an empty connection arena, message-ID
// registry, and output queue. It is not yet bound to a socket; call Open.
func NewEndpoint(cfg *Config) *Endpoint {
	log := cfg.Logger
	if log == nil {
		log = obalog.NewDefault()
	}
	return &Endpoint{
		Config:       cfg,
		ConnArena:    arena.New(),
		MsgIDs:       msgid.New(msgid.DefaultLayerSize),
		OutQueue:     queue.New(),
		GetFramer:    DefaultFramer,
		GetParser:    DefaultParser,
		PutEncoder:   DefaultEncoder,
		RejectBitmap: cfg.DefaultRejectBitmap,
		Log:          log.WithRequestID(obalog.GenerateRequestID()),
	}
}

// Open binds the Endpoint to hostname:port, or, when port is the
// nodeNamePort sentinel, to hostname interpreted as a Unix domain socket
// path.
func (ep *Endpoint) Open(hostname string, port int) error {
	var conn net.Conn
	var err error
	if port == nodeNamePort {
		conn, err = net.Dial("unix", hostname)
	} else {
		conn, err = net.Dial("tcp", fmt.Sprintf("%s:%d", hostname, port))
	}
	if err != nil {
		return err
	}
	ep.conn = conn
	ep.Log.Info("endpoint opened", "remote", conn.RemoteAddr().String())
	return nil
}

// Bind attaches an already-accepted connection to the Endpoint, the
// server-side counterpart of Open used by a listener's accept loop.
func (ep *Endpoint) Bind(conn net.Conn) {
	ep.conn = conn
	ep.Log.Info("endpoint bound", "remote", conn.RemoteAddr().String())
}

// Close ends every live message-ID arena, then the connection arena, then
// closes the underlying socket. Idempotent with respect to the arenas;
// closing an already-closed socket returns net's own error.
func (ep *Endpoint) Close() error {
	ep.MsgIDs.FreeAll()
	ep.ConnArena.End()
	if ep.conn == nil {
		return nil
	}
	return ep.conn.Close()
}

// Reject sets reject-bit op, causing every subsequent incoming operation
// of that opcode to fail UNSUPPORTED without invoking any callback.
func (ep *Endpoint) Reject(op int) {
	word, bit := opcode.WordAndBit(op)
	ep.RejectBitmap[word] |= 1 << bit
}

// Accept clears reject-bit op, the inverse of Reject.
func (ep *Endpoint) Accept(op int) {
	word, bit := opcode.WordAndBit(op)
	ep.RejectBitmap[word] &^= 1 << bit
}

// rejected reports whether op is currently refused by the reject bitmap.
func (ep *Endpoint) rejected(op int) bool {
	word, bit := opcode.WordAndBit(op)
	return ep.RejectBitmap[word]&(1<<bit) != 0
}

// GetEvent drives one iteration of the inbound pipeline: frame, shallow
// parse, route, dispatch. It blocks on the socket read; callers that
// want non-blocking behavior run GetEvent in its own goroutine per
// connection rather than polling for readiness (see DESIGN.md).
func (ep *Endpoint) GetEvent() Status {
	frameArena, frame, st := ep.GetFramer(ep)
	if st != StatusOK {
		return st
	}
	return ep.GetParser(ep, frameArena, frame)
}

// Send encodes and enqueues one outgoing operation for transmission. The
// caller retains ownership of fields/controls only until Send returns;
// the encoder copies everything it needs into a fresh arena owned by
// the queued item before enqueuing.
func (ep *Endpoint) Send(msgID uint32, op int, fields []Cursor, controls Cursor) Status {
	return ep.PutEncoder(ep, msgID, op, fields, controls)
}

// PutEvent drains and transmits exactly one queued outgoing item, the
// consumer half of the output queue. Returns StatusRetry when the queue
// is currently empty.
func (ep *Endpoint) PutEvent() Status {
	item, ok := ep.OutQueue.Dequeue()
	if !ok {
		return StatusRetry
	}
	for _, c := range item.Cursors {
		if _, err := ep.conn.Write(c.Bytes()); err != nil {
			return StatusIO
		}
	}
	if item.Arena != nil {
		item.Arena.End()
	}
	return StatusOK
}
