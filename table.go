package quic

import (
	"net"
	"sync"

	"github.com/corequic/quic/transport"
)

// localCIDLen is the connection ID length this module always issues. A
// fixed length lets an endpoint demultiplex short-header packets (which
// carry no explicit CID length on the wire) without first owning a Conn
// to ask.
const localCIDLen = 16

// remoteConn pairs one transport.Conn with the UDP peer it talks to and
// bookkeeping for the connection-lifecycle events an endpoint raises
// exactly once each.
type remoteConn struct {
	addr net.Addr
	scid []byte
	conn *transport.Conn

	notifiedEstablished bool
	notifiedClosed      bool
}

// connTable demultiplexes incoming datagrams by destination connection ID
// (spec.md §5 "Shared resources": the socket is shared across
// connections, no cross-connection locks beyond this lookup are needed).
type connTable struct {
	mu    sync.Mutex
	byCID map[string]*remoteConn
}

func newConnTable() *connTable {
	return &connTable{byCID: make(map[string]*remoteConn)}
}

func (t *connTable) get(cid []byte) *remoteConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byCID[string(cid)]
}

func (t *connTable) add(cid []byte, c *remoteConn) {
	t.mu.Lock()
	t.byCID[string(cid)] = c
	t.mu.Unlock()
}

func (t *connTable) remove(cid []byte) {
	t.mu.Lock()
	delete(t.byCID, string(cid))
	t.mu.Unlock()
}

// all returns every distinct remoteConn currently tracked. A connection
// may be keyed by more than one CID (a server registers both the client's
// original dcid and its own scid), so duplicates are collapsed.
func (t *connTable) all() []*remoteConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[*remoteConn]bool, len(t.byCID))
	out := make([]*remoteConn, 0, len(t.byCID))
	for _, c := range t.byCID {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
