package quic

import (
	"net"

	"github.com/corequic/quic/transport"
)

// Conn is the application-facing handle for one QUIC connection: the
// transport state machine paired with the UDP peer address it answers to.
// It is a thin value type — the state lives in the shared remoteConn the
// endpoint's connection table owns.
type Conn struct {
	remote *remoteConn
}

// RemoteAddr returns the UDP address this connection sends to and
// receives datagrams from.
func (c Conn) RemoteAddr() net.Addr {
	return c.remote.addr
}

// Stream returns the named stream, creating it locally if it does not yet
// exist (transport.Conn.Stream's contract).
func (c Conn) Stream(id uint64) *transport.Stream {
	st, _ := c.remote.conn.Stream(id)
	return st
}

// Close begins closing the connection with the given application or
// transport error code and optional human-readable reason.
func (c Conn) Close(app bool, errCode uint64, reason string) {
	c.remote.conn.Close(app, errCode, reason)
}

// SourceCID returns the local connection ID this Conn is keyed by in the
// endpoint's connection table.
func (c Conn) SourceCID() []byte {
	return c.remote.scid
}
