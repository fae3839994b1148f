package quic

import (
	"io"
	"net"

	"github.com/corequic/quic/transport"
)

// Client dials outbound QUIC connections over one shared UDP socket.
type Client struct {
	endpoint *endpoint
}

func NewClient(config *Config) *Client {
	return &Client{endpoint: newEndpoint(config)}
}

func (c *Client) SetHandler(h Handler) {
	c.endpoint.SetHandler(h)
}

func (c *Client) SetLogger(level int, w io.Writer) {
	c.endpoint.SetLogger(level, w)
}

// ListenAndServe opens the client's local UDP socket and starts its
// receive loop. Call before Connect.
func (c *Client) ListenAndServe(addr string) error {
	return c.endpoint.listen(addr)
}

// Connect starts a new client-side handshake toward addr, keyed by a
// freshly generated source connection ID.
func (c *Client) Connect(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	scid, err := newSourceCID()
	if err != nil {
		return err
	}
	tconn, err := transport.Connect(scid, c.endpoint.config.transportConfig(transport.Version1))
	if err != nil {
		return err
	}
	rc := &remoteConn{addr: udpAddr, scid: scid, conn: tconn}
	c.endpoint.table.add(scid, rc)
	c.endpoint.logger.attachLogger(rc)
	c.endpoint.flush(rc)
	return nil
}

func (c *Client) Close() error {
	return c.endpoint.close()
}
