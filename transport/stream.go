package transport

import "io"

// streamState tracks the send/receive state-machine halves described by
// spec.md §3 "Stream": idle -> open -> {half-closed-local,
// half-closed-remote} -> closed, plus reset-sent/reset-received branches.
type streamState uint8

const (
	streamOpen streamState = iota
	streamLocalClosed
	streamRemoteClosed
	streamClosed
	streamResetSent
	streamResetReceived
)

// Stream is one QUIC stream (spec.md §3). Its ID's two low bits encode
// {client,server}x{bidi,uni}, per isStreamLocal/isStreamBidi below.
type Stream struct {
	id    uint64
	local bool // true if this endpoint initiated the stream
	bidi  bool

	send sendBuffer
	recv recvBuffer
	flow flowControl

	connFlow *flowControl // connection-level ledger, shared across streams

	state         streamState
	updateMaxData bool // a MAX_STREAM_DATA needs to be sent
	resetCode     uint64
	stopCode      uint64
}

func newStream(id uint64, local, bidi bool) *Stream {
	return &Stream{id: id, local: local, bidi: bidi}
}

// isStreamLocal reports whether id was initiated by this endpoint.
func isStreamLocal(id uint64, isClient bool) bool {
	initiatorIsClient := id&0x1 == 0
	return initiatorIsClient == isClient
}

// isStreamBidi reports whether id names a bidirectional stream.
func isStreamBidi(id uint64) bool {
	return id&0x2 == 0
}

// pushRecv delivers STREAM frame payload into the reassembler and
// transitions to half-closed-remote on FIN.
func (s *Stream) pushRecv(data []byte, offset uint64, fin bool) error {
	if err := s.recv.push(data, offset, fin); err != nil {
		return err
	}
	if fin {
		s.closeRemote()
	}
	return nil
}

// popSend returns the next outgoing STREAM frame payload, transitioning to
// half-closed-local when the final byte (with FIN) has been handed off.
func (s *Stream) popSend(max int) ([]byte, uint64, bool) {
	data, offset, fin := s.send.popSend(max)
	if fin {
		s.closeLocal()
	}
	return data, offset, fin
}

// Write queues data for sending on this stream (application-facing API;
// spec.md declares the byte-oriented stream API an external collaborator,
// this is the concrete default implementation of it).
func (s *Stream) Write(b []byte) (int, error) {
	if s.state == streamLocalClosed || s.state == streamClosed || s.state == streamResetSent {
		return 0, io.ErrClosedPipe
	}
	s.send.write(b, false)
	return len(b), nil
}

// Close marks the stream's send side finished (FIN).
func (s *Stream) Close() error {
	s.send.write(nil, true)
	return nil
}

// Read drains reassembled bytes, returning io.EOF once FIN has been
// received and all prior bytes delivered.
func (s *Stream) Read(p []byte) (int, error) {
	n, ok := s.recv.read(p)
	if ok {
		return n, nil
	}
	if s.recv.finished() {
		return 0, io.EOF
	}
	return 0, nil
}

func (s *Stream) ackMaxData() {
	s.flow.commitMaxRecv()
	s.updateMaxData = false
}

func (s *Stream) closeLocal() {
	switch s.state {
	case streamOpen:
		s.state = streamLocalClosed
	case streamRemoteClosed:
		s.state = streamClosed
	}
}

func (s *Stream) closeRemote() {
	switch s.state {
	case streamOpen:
		s.state = streamRemoteClosed
	case streamLocalClosed:
		s.state = streamClosed
	}
}

// hasFlushable reports whether this stream has unsent or re-queued data.
func (s *Stream) hasFlushable() bool {
	return s.send.hasFlushable()
}

// streamMap owns all streams for a connection and enforces the peer- and
// locally-advertised stream-count limits (spec.md §4 "Stream manager").
type streamMap struct {
	isClient bool
	streams  map[uint64]*Stream

	// Limits we grant the peer (local limits) and limits the peer grants us
	// (peer limits), tracked separately for bidi/uni.
	localMaxStreamsBidi uint64
	localMaxStreamsUni  uint64
	peerMaxStreamsBidi  uint64
	peerMaxStreamsUni   uint64

	// Number of streams of each local kind opened so far.
	openedBidi uint64
	openedUni  uint64
}

func (m *streamMap) init(maxStreamsBidi, maxStreamsUni uint64) {
	m.streams = make(map[uint64]*Stream)
	m.localMaxStreamsBidi = maxStreamsBidi
	m.localMaxStreamsUni = maxStreamsUni
}

func (m *streamMap) get(id uint64) *Stream {
	return m.streams[id]
}

// create allocates a new stream, enforcing stream-count limits (spec.md §6
// STREAM_ID_ERROR via the general StreamIDError code).
func (m *streamMap) create(id uint64, local, bidi bool) (*Stream, error) {
	if local {
		limit := m.peerMaxStreamsUni
		if bidi {
			limit = m.peerMaxStreamsBidi
		}
		if m.countLocal(bidi) >= limit {
			return nil, newError(StreamIDError, "stream limit exceeded")
		}
	} else {
		limit := m.localMaxStreamsUni
		if bidi {
			limit = m.localMaxStreamsBidi
		}
		if m.countPeer(id, bidi) > limit {
			return nil, newError(StreamIDError, "stream limit exceeded")
		}
	}
	st := newStream(id, local, bidi)
	m.streams[id] = st
	if local {
		if bidi {
			m.openedBidi++
		} else {
			m.openedUni++
		}
	}
	return st, nil
}

func (m *streamMap) countLocal(bidi bool) uint64 {
	if bidi {
		return m.openedBidi
	}
	return m.openedUni
}

// countPeer returns the ordinal of a peer-initiated stream ID (id>>2 + 1),
// used to check it against the limit we advertised.
func (m *streamMap) countPeer(id uint64, bidi bool) uint64 {
	return id>>2 + 1
}

func (m *streamMap) setPeerMaxStreamsBidi(n uint64) {
	if n > m.peerMaxStreamsBidi {
		m.peerMaxStreamsBidi = n
	}
}

func (m *streamMap) setPeerMaxStreamsUni(n uint64) {
	if n > m.peerMaxStreamsUni {
		m.peerMaxStreamsUni = n
	}
}

func (m *streamMap) hasFlushable() bool {
	for _, st := range m.streams {
		if st.hasFlushable() {
			return true
		}
	}
	return false
}
