package quic

import (
	"io"
	"net"

	"github.com/corequic/quic/transport"
)

// Server accepts inbound QUIC connections over one shared UDP socket.
type Server struct {
	endpoint *endpoint
}

func NewServer(config *Config) *Server {
	s := &Server{endpoint: newEndpoint(config)}
	s.endpoint.acceptFunc = s.accept
	return s
}

func (s *Server) SetHandler(h Handler) {
	s.endpoint.SetHandler(h)
}

func (s *Server) SetLogger(level int, w io.Writer) {
	s.endpoint.SetLogger(level, w)
}

func (s *Server) ListenAndServe(addr string) error {
	return s.endpoint.listen(addr)
}

func (s *Server) Close() error {
	return s.endpoint.close()
}

func (s *Server) accept(dcid []byte, addr net.Addr) (*transport.Conn, []byte, error) {
	scid, err := newSourceCID()
	if err != nil {
		return nil, nil, err
	}
	conn, err := transport.Accept(scid, dcid, s.endpoint.config.transportConfig(transport.Version1))
	if err != nil {
		return nil, nil, err
	}
	return conn, scid, nil
}
