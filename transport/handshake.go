package transport

import (
	"context"
	"crypto/tls"
)

// tlsHandshake is the external TLS 1.3 oracle collaborator (spec.md §4
// "Handshake oracle: opaque box"). It drives Go's stdlib QUIC-TLS API
// (crypto/tls.QUICConn, Go 1.21+) and shuttles bytes between it and each
// packet-number space's crypto stream, translating emitted secrets into
// packetAEAD instances installed on the Conn.
type tlsHandshake struct {
	conn      *Conn
	tlsConfig *tls.Config
	quic      *tls.QUICConn

	started  bool
	complete bool
	peer     Parameters
	hasPeer  bool

	space packetSpace // latest space with keys installed, for writeSpace()
}

func (h *tlsHandshake) init(conn *Conn, tlsConfig *tls.Config) {
	h.conn = conn
	h.tlsConfig = tlsConfig
	h.space = packetSpaceInitial
	if conn.isClient {
		h.quic = tls.QUICClient(&tls.QUICConfig{TLSConfig: tlsConfig})
	} else {
		h.quic = tls.QUICServer(&tls.QUICConfig{TLSConfig: tlsConfig})
	}
}

// reset reinitializes the handshake, e.g. after a Retry restarts the
// Initial exchange with a fresh destination connection ID.
func (h *tlsHandshake) reset() {
	conn, tlsConfig := h.conn, h.tlsConfig
	if h.quic != nil {
		h.quic.Close()
	}
	*h = tlsHandshake{}
	h.init(conn, tlsConfig)
}

func (h *tlsHandshake) setTransportParams(p *Parameters) {
	if h.quic != nil {
		h.quic.SetTransportParameters(p.Marshal())
	}
}

func (h *tlsHandshake) HandshakeComplete() bool {
	return h.complete
}

func (h *tlsHandshake) peerTransportParams() *Parameters {
	if !h.hasPeer {
		return nil
	}
	return &h.peer
}

// writeSpace reports the latest packet-number space with write keys
// installed, used when the connection must send a probe or a
// CONNECTION_CLOSE in whatever space is currently available.
func (h *tlsHandshake) writeSpace() packetSpace {
	return h.space
}

// doHandshake feeds newly received CRYPTO bytes from every space into the
// TLS state machine and drains the events it produces. It is idempotent
// and safe to call repeatedly as more handshake bytes arrive.
func (h *tlsHandshake) doHandshake() error {
	if h.quic == nil {
		return newError(InternalError, "handshake not initialized")
	}
	if !h.started {
		if err := h.quic.Start(context.Background()); err != nil {
			return newError(CryptoError, err.Error())
		}
		h.started = true
		if err := h.drainEvents(); err != nil {
			return err
		}
	}
	for sp := packetSpaceInitial; sp < packetSpaceCount; sp++ {
		cs := &h.conn.packetNumberSpaces[sp].cryptoStream
		data := cs.recvContiguous()
		if len(data) == 0 {
			continue
		}
		if err := h.quic.HandleData(tlsLevelForSpace(sp), data); err != nil {
			return newError(CryptoError, err.Error())
		}
		cs.consume(len(data))
		if err := h.drainEvents(); err != nil {
			return err
		}
	}
	return nil
}

func (h *tlsHandshake) drainEvents() error {
	for {
		e := h.quic.NextEvent()
		switch e.Kind {
		case tls.QUICNoEvent:
			return nil
		case tls.QUICSetWriteSecret:
			sp := spaceForTLSLevel(e.Level)
			h.conn.packetNumberSpaces[sp].sealer = deriveAEAD(e.Data)
			if sp > h.space {
				h.space = sp
			}
		case tls.QUICSetReadSecret:
			sp := spaceForTLSLevel(e.Level)
			h.conn.packetNumberSpaces[sp].opener = deriveAEAD(e.Data)
		case tls.QUICWriteData:
			sp := spaceForTLSLevel(e.Level)
			h.conn.packetNumberSpaces[sp].cryptoStream.send.write(e.Data, false)
		case tls.QUICTransportParameters:
			var p Parameters
			if err := p.Unmarshal(e.Data); err != nil {
				return err
			}
			h.peer = p
			h.hasPeer = true
		case tls.QUICHandshakeDone:
			h.complete = true
		case tls.QUICTransportParametersRequired:
			h.quic.SetTransportParameters(h.conn.localParams.Marshal())
		}
	}
}

// tlsLevelForSpace maps a packet-number space to the TLS encryption level
// carrying its CRYPTO stream. 0-RTT is not modeled as a distinct
// packet-number space (RFC 9000 §12.3: 0-RTT and 1-RTT share the
// Application space), so there is no space to map QUICEncryptionLevelEarly
// from; early data is outside this module's scope (see SPEC_FULL.md
// Non-goals).
func tlsLevelForSpace(sp packetSpace) tls.QUICEncryptionLevel {
	switch sp {
	case packetSpaceInitial:
		return tls.QUICEncryptionLevelInitial
	case packetSpaceHandshake:
		return tls.QUICEncryptionLevelHandshake
	default:
		return tls.QUICEncryptionLevelApplication
	}
}

func spaceForTLSLevel(level tls.QUICEncryptionLevel) packetSpace {
	switch level {
	case tls.QUICEncryptionLevelInitial:
		return packetSpaceInitial
	case tls.QUICEncryptionLevelHandshake:
		return packetSpaceHandshake
	default:
		return packetSpaceApplication
	}
}
