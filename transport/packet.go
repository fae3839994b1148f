package transport

import (
	"fmt"
)

// packetType identifies the wire packet kind (spec.md §3 "Packet").
type packetType uint8

const (
	packetTypeInitial packetType = iota
	packetTypeZeroRTT
	packetTypeHandshake
	packetTypeRetry
	packetTypeVersionNegotiation
	packetTypeShort
)

func (t packetType) String() string {
	switch t {
	case packetTypeInitial:
		return "initial"
	case packetTypeZeroRTT:
		return "0-rtt"
	case packetTypeHandshake:
		return "handshake"
	case packetTypeRetry:
		return "retry"
	case packetTypeVersionNegotiation:
		return "version_negotiation"
	case packetTypeShort:
		return "1-rtt"
	default:
		return "unknown"
	}
}

// Long-header type bits (byte0 bits 4-5), see spec.md §6.
const (
	longTypeInitial   = 0x0
	longTypeZeroRTT   = 0x1
	longTypeHandshake = 0x2
	longTypeRetry     = 0x3
)

func packetTypeFromSpace(space packetSpace) packetType {
	switch space {
	case packetSpaceInitial:
		return packetTypeInitial
	case packetSpaceHandshake:
		return packetTypeHandshake
	default:
		return packetTypeShort
	}
}

func spaceFromPacketType(t packetType) packetSpace {
	switch t {
	case packetTypeInitial:
		return packetSpaceInitial
	case packetTypeHandshake:
		return packetSpaceHandshake
	default:
		return packetSpaceApplication
	}
}

// packetHeader is the common header fields of a QUIC packet.
type packetHeader struct {
	version uint32
	dcid    []byte
	scid    []byte
	dcil    uint8 // expected DCID length for short headers, set by caller before decode
}

// packet is a parsed or to-be-encoded QUIC packet.
type packet struct {
	typ               packetType
	header            packetHeader
	token             []byte
	packetNumber      uint64
	packetNumberLen   int
	payloadLen        int // decoded: the wire Length field (pn + frames + AEAD tag); encoded: frames + AEAD tag, encode adds the pn length when writing Length
	headerLen         int // header bytes consumed/written, excluding packet number
	supportedVersions []uint32
}

func (p *packet) String() string {
	return fmt.Sprintf("type=%s dcid=%x scid=%x pn=%d", p.typ, p.header.dcid, p.header.scid, p.packetNumber)
}

func isLongHeader(b0 byte) bool {
	return b0&0x80 != 0
}

// decodeHeader parses enough of the header to route the packet: version,
// connection IDs, type, and (for Initial) the retry token. It does not
// touch the packet-number or payload, which require AEAD-level decoding
// once the header-protection sample is known (see packetNumberSpace.decryptPacket).
func (p *packet) decodeHeader(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, newError(FrameEncodingError, "short packet")
	}
	b0 := b[0]
	off := 1
	if !isLongHeader(b0) {
		p.typ = packetTypeShort
		n := int(p.header.dcil)
		if len(b) < off+n {
			return 0, newError(FrameEncodingError, "short header dcid")
		}
		p.header.dcid = b[off : off+n]
		off += n
		p.headerLen = off
		return off, nil
	}
	if len(b) < off+4 {
		return 0, newError(FrameEncodingError, "long header version")
	}
	p.header.version = uint32(b[off])<<24 | uint32(b[off+1])<<16 | uint32(b[off+2])<<8 | uint32(b[off+3])
	off += 4
	if p.header.version == 0 {
		p.typ = packetTypeVersionNegotiation
	} else {
		switch (b0 >> 4) & 0x3 {
		case longTypeInitial:
			p.typ = packetTypeInitial
		case longTypeZeroRTT:
			p.typ = packetTypeZeroRTT
		case longTypeHandshake:
			p.typ = packetTypeHandshake
		case longTypeRetry:
			p.typ = packetTypeRetry
		}
	}
	if len(b) < off+1 {
		return 0, newError(FrameEncodingError, "long header cid lengths")
	}
	dcil := int(b[off] >> 4)
	scil := int(b[off] & 0x0f)
	off++
	if len(b) < off+dcil+scil {
		return 0, newError(FrameEncodingError, "long header cids")
	}
	p.header.dcid = b[off : off+dcil]
	off += dcil
	p.header.scid = b[off : off+scil]
	off += scil
	if p.typ == packetTypeInitial {
		var tokenLen uint64
		n := getVarint(b[off:], &tokenLen)
		if n == 0 {
			return 0, newError(FrameEncodingError, "initial token length")
		}
		off += n
		if len(b) < off+int(tokenLen) {
			return 0, newError(FrameEncodingError, "initial token")
		}
		p.token = b[off : off+int(tokenLen)]
		off += int(tokenLen)
	}
	// Initial, 0-RTT and Handshake packets carry a Length field (the
	// remaining packet-number + payload byte count) right before the
	// (still header-protected) packet number; Retry carries neither.
	if p.typ != packetTypeRetry {
		var length uint64
		n := getVarint(b[off:], &length)
		if n == 0 {
			return 0, newError(FrameEncodingError, "long header length")
		}
		off += n
		p.payloadLen = int(length)
	}
	p.headerLen = off
	return off, nil
}

// decodeBody parses the remainder of a Version Negotiation or Retry packet,
// both of which carry no packet number.
func (p *packet) decodeBody(b []byte) (int, error) {
	switch p.typ {
	case packetTypeVersionNegotiation:
		rest := b[p.headerLen:]
		if len(rest)%4 != 0 {
			return 0, newError(FrameEncodingError, "version negotiation list")
		}
		p.supportedVersions = p.supportedVersions[:0]
		for i := 0; i+4 <= len(rest); i += 4 {
			v := uint32(rest[i])<<24 | uint32(rest[i+1])<<16 | uint32(rest[i+2])<<8 | uint32(rest[i+3])
			p.supportedVersions = append(p.supportedVersions, v)
		}
		return len(rest), nil
	case packetTypeRetry:
		const retryIntegrityTagLen = 16
		rest := b[p.headerLen:]
		if len(rest) < retryIntegrityTagLen {
			return 0, newError(FrameEncodingError, "retry too short")
		}
		p.token = rest[:len(rest)-retryIntegrityTagLen]
		return len(rest), nil
	default:
		return 0, newError(InternalError, "decodeBody called on wrong packet type")
	}
}

// encodedLen returns the number of bytes the header (up to and including
// the packet number, but excluding the AEAD tag/payload) will occupy once
// encoded, used to compute how much room is left for frames.
func (p *packet) encodedLen() int {
	n := 1 // byte0
	if p.typ == packetTypeShort {
		n += len(p.header.dcid)
		n += p.packetNumberLen
		return n
	}
	n += 4 // version
	n++    // cid length byte
	n += len(p.header.dcid) + len(p.header.scid)
	if p.typ == packetTypeInitial {
		n += varintLen(uint64(len(p.token)))
		n += len(p.token)
	}
	n += varintLen(uint64(p.payloadLen))
	n += p.packetNumberLen
	return n
}

// encode writes the packet header (long or short) into b. When the caller
// leaves p.packetNumberLen unset, it picks the packet-number length from the
// magnitude of p.packetNumber alone (relative to 0). It returns the offset
// at which the encrypted payload begins.
func (p *packet) encode(b []byte) (int, error) {
	if p.packetNumberLen == 0 {
		p.packetNumberLen = packetNumberLenFor(p.packetNumber, 0)
	}
	off := 0
	if p.typ == packetTypeShort {
		if len(b) < 1+len(p.header.dcid)+p.packetNumberLen {
			return 0, errShortBuffer
		}
		b[off] = 0x40 | byte(p.packetNumberLen-1)
		off++
		off += copy(b[off:], p.header.dcid)
		off += encodePacketNumber(b[off:], p.packetNumber, p.packetNumberLen)
		return off, nil
	}
	b0 := byte(0xC0) | byte(p.packetNumberLen-1)
	switch p.typ {
	case packetTypeInitial:
		b0 |= longTypeInitial << 4
	case packetTypeZeroRTT:
		b0 |= longTypeZeroRTT << 4
	case packetTypeHandshake:
		b0 |= longTypeHandshake << 4
	case packetTypeRetry:
		b0 |= longTypeRetry << 4
	}
	need := 1 + 4 + 1 + len(p.header.dcid) + len(p.header.scid)
	if p.typ == packetTypeInitial {
		need += varintLen(uint64(len(p.token))) + len(p.token)
	}
	need += varintLen(uint64(p.payloadLen+p.packetNumberLen)) + p.packetNumberLen
	if len(b) < need {
		return 0, errShortBuffer
	}
	b[off] = b0
	off++
	b[off] = byte(p.header.version >> 24)
	b[off+1] = byte(p.header.version >> 16)
	b[off+2] = byte(p.header.version >> 8)
	b[off+3] = byte(p.header.version)
	off += 4
	b[off] = byte(len(p.header.dcid)<<4) | byte(len(p.header.scid))
	off++
	off += copy(b[off:], p.header.dcid)
	off += copy(b[off:], p.header.scid)
	if p.typ == packetTypeInitial {
		nb := putVarint(b[:off], uint64(len(p.token)))
		off = len(nb)
		off += copy(b[off:], p.token)
	}
	nb := putVarint(b[:off], uint64(p.payloadLen+p.packetNumberLen))
	off = len(nb)
	off += encodePacketNumber(b[off:], p.packetNumber, p.packetNumberLen)
	p.headerLen = off - p.packetNumberLen
	return off, nil
}

// PeekDestinationCID extracts just the destination connection ID from a
// datagram's first packet, without parsing or validating anything else.
// Endpoints use this to route an incoming datagram to the right Conn
// before a full transport.packet decode is possible. shortCIDLen is the
// connection ID length this endpoint always issues, needed because a
// short header carries no explicit length for it.
func PeekDestinationCID(b []byte, shortCIDLen int) ([]byte, error) {
	if len(b) < 1 {
		return nil, newError(FrameEncodingError, "short packet")
	}
	if !isLongHeader(b[0]) {
		if len(b) < 1+shortCIDLen {
			return nil, newError(FrameEncodingError, "short header dcid")
		}
		return b[1 : 1+shortCIDLen], nil
	}
	if len(b) < 6 {
		return nil, newError(FrameEncodingError, "long header")
	}
	dcil := int(b[5] >> 4)
	if len(b) < 6+dcil {
		return nil, newError(FrameEncodingError, "long header dcid")
	}
	return b[6 : 6+dcil], nil
}

// packetNumberLenFor picks the smallest encoding (1-4 bytes) such that the
// packet number is distinguishable from largestAcked+1 on the wire; in
// practice senders just grow the length as pn increases past each range.
func packetNumberLenFor(pn uint64, largestAcked uint64) int {
	diff := pn - largestAcked
	switch {
	case diff < 1<<7:
		return 1
	case diff < 1<<15:
		return 2
	case diff < 1<<23:
		return 3
	default:
		return 4
	}
}
