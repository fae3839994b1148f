package quic

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corequic/quic/transport"
)

// tickInterval bounds how long a read can block before the endpoint gets
// a chance to drive idle/loss timers for connections that received
// nothing in that window.
const tickInterval = 200 * time.Millisecond

// endpoint is the UDP socket loop, connection table and dispatch logic
// shared by Client and Server (spec.md §5: one socket serves every
// connection; sends are single-threaded per destination so never
// reordered; the handshake oracle is a per-connection resource).
type endpoint struct {
	config *Config
	socket *net.UDPConn
	table  *connTable

	// acceptFunc creates a new server-side Conn for a datagram whose
	// destination CID matches nothing in the table. nil on a Client,
	// which never accepts.
	acceptFunc func(dcid []byte, addr net.Addr) (*transport.Conn, []byte, error)

	handler Handler
	logger  logger

	group  *errgroup.Group
	cancel context.CancelFunc
}

func newEndpoint(config *Config) *endpoint {
	return &endpoint{
		config: config,
		table:  newConnTable(),
	}
}

func (e *endpoint) SetHandler(h Handler) {
	e.handler = h
}

func (e *endpoint) SetLogger(level int, w io.Writer) {
	e.logger.level = logLevel(level)
	e.logger.setWriter(w)
}

func (e *endpoint) listen(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	socket, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	e.socket = socket
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	group, ctx := errgroup.WithContext(ctx)
	e.group = group
	group.Go(func() error {
		return e.readLoop(ctx)
	})
	return nil
}

func (e *endpoint) close() error {
	if e.cancel != nil {
		e.cancel()
	}
	var err error
	if e.socket != nil {
		err = e.socket.Close()
	}
	if e.group != nil {
		e.group.Wait()
	}
	return err
}

func (e *endpoint) readLoop(ctx context.Context) error {
	buf := make([]byte, transport.MaxPacketSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		e.socket.SetReadDeadline(time.Now().Add(tickInterval))
		n, addr, err := e.socket.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				e.tick()
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		e.dispatch(buf[:n], addr)
	}
}

// dispatch routes one received datagram to its connection, accepting a
// new server-side connection when acceptFunc is set and no match exists.
func (e *endpoint) dispatch(b []byte, addr net.Addr) {
	dcid, err := transport.PeekDestinationCID(b, localCIDLen)
	if err != nil {
		e.logger.log(levelDebug, "dropped unparseable datagram from %s: %v", addr, err)
		return
	}
	rc := e.table.get(dcid)
	if rc == nil {
		if e.acceptFunc == nil {
			return
		}
		// Only a long-header Initial packet may open a new connection; any
		// other datagram for an unknown CID is dropped.
		if b[0]&0x80 == 0 || (b[0]>>4)&0x3 != 0 {
			e.logger.log(levelDebug, "dropped non-Initial datagram for unknown CID from %s", addr)
			return
		}
		conn, scid, err := e.acceptFunc(dcid, addr)
		if err != nil {
			e.logger.log(levelError, "accept %s: %v", addr, err)
			return
		}
		rc = &remoteConn{addr: addr, scid: scid, conn: conn}
		// The client addresses every retransmitted first Initial packet
		// with the same randomly-chosen dcid until it sees our scid in a
		// reply, so this connection must be reachable under both keys.
		e.table.add(dcid, rc)
		e.table.add(scid, rc)
		e.logger.attachLogger(rc)
	} else {
		rc.addr = addr
	}
	e.deliver(rc, b)
}

func (e *endpoint) deliver(rc *remoteConn, b []byte) {
	if _, err := rc.conn.Write(b); err != nil {
		e.logger.log(levelError, "conn %x write: %v", rc.scid, err)
	}
	e.flush(rc)
}

// flush drains every packet the connection now has ready to send and
// notifies the Handler of any events raised while processing.
func (e *endpoint) flush(rc *remoteConn) {
	buf := make([]byte, transport.MaxPacketSize)
	for {
		n, err := rc.conn.Read(buf)
		if err != nil {
			e.logger.log(levelError, "conn %x read: %v", rc.scid, err)
			break
		}
		if n == 0 {
			break
		}
		if udpAddr, ok := rc.addr.(*net.UDPAddr); ok {
			e.socket.WriteToUDP(buf[:n], udpAddr)
		}
	}
	e.notify(rc)
	if rc.conn.IsClosed() {
		e.table.remove(rc.scid)
		e.logger.detachLogger(rc)
	}
}

func (e *endpoint) notify(rc *remoteConn) {
	var out []transport.Event
	if rc.conn.IsEstablished() && !rc.notifiedEstablished {
		rc.notifiedEstablished = true
		out = append(out, transport.Event{Type: EventConnAccept})
	}
	out = rc.conn.Events(out)
	if rc.conn.IsClosed() && !rc.notifiedClosed {
		rc.notifiedClosed = true
		out = append(out, transport.Event{Type: EventConnClose})
	}
	if len(out) == 0 || e.handler == nil {
		return
	}
	e.handler.Serve(Conn{remote: rc}, out)
}

// tick drives every connection's idle/loss/PTO timers once, for
// connections that receive nothing within a read-loop interval.
func (e *endpoint) tick() {
	for _, rc := range e.table.all() {
		if rc.conn.Timeout() < 0 {
			continue
		}
		rc.conn.Write(nil)
		e.flush(rc)
	}
}

// newSourceCID generates a fresh, randomly chosen local connection ID of
// the endpoint's fixed length.
func newSourceCID() ([]byte, error) {
	scid := make([]byte, localCIDLen)
	if _, err := rand.Read(scid); err != nil {
		return nil, err
	}
	return scid, nil
}
