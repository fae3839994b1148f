package transport

// sendBuffer tracks bytes written locally, bytes sent, and bytes acked for
// one direction of a stream-shaped byte sequence (a Stream or a per-level
// CRYPTO stream). Lost frames are resubmitted through push rather than
// reusing their original packet number (spec.md §3 "Packet-number space"
// invariant).
type sendBuffer struct {
	buf        []byte // bytes from bufOffset onward, oldest-first
	bufOffset  uint64 // stream offset of buf[0]
	sentOffset uint64 // high-water mark: bytes below this have been sent at least once
	acked      rangeSet
	resend     []byteRange // (offset,len) ranges re-queued after loss
	finOffset  uint64
	finSet     bool
}

type byteRange struct {
	offset uint64
	length uint64
	fin    bool
}

// write appends application data to the buffer for eventual sending.
func (s *sendBuffer) write(data []byte, fin bool) {
	s.buf = append(s.buf, data...)
	if fin {
		s.finSet = true
		s.finOffset = s.bufOffset + uint64(len(s.buf))
	}
}

// push re-queues previously-sent bytes (e.g. from a packet declared lost)
// for retransmission. popSend skips the bytes of a queued range that an
// ack has since trimmed, in whole or in part.
func (s *sendBuffer) push(data []byte, offset uint64, fin bool) error {
	s.resend = append(s.resend, byteRange{offset: offset, length: uint64(len(data)), fin: fin})
	return nil
}

// popSend returns up to max bytes of unsent (or re-queued) data, the stream
// offset it starts at, and whether FIN accompanies it.
func (s *sendBuffer) popSend(max int) ([]byte, uint64, bool) {
	if max <= 0 {
		return nil, 0, false
	}
	if len(s.resend) > 0 {
		r := s.resend[0]
		if r.offset < s.bufOffset && r.offset+r.length > s.bufOffset {
			// Partially trimmed by an ack; resend only the unacked tail.
			r = byteRange{offset: s.bufOffset, length: r.offset + r.length - s.bufOffset, fin: r.fin}
			s.resend[0] = r
		}
		n := int(r.length)
		if n > max {
			n = max
		}
		start := int(r.offset - s.bufOffset)
		if start < 0 || start+n > len(s.buf) {
			// Already trimmed by an ack; drop this resend entry.
			s.resend = s.resend[1:]
			return s.popSend(max)
		}
		data := s.buf[start : start+n]
		fin := r.fin && n == int(r.length)
		if n == int(r.length) {
			s.resend = s.resend[1:]
		} else {
			s.resend[0] = byteRange{offset: r.offset + uint64(n), length: r.length - uint64(n), fin: r.fin}
		}
		return data, r.offset, fin
	}
	avail := len(s.buf) - int(s.sentOffset-s.bufOffset)
	if avail <= 0 {
		return nil, 0, false
	}
	n := avail
	if n > max {
		n = max
	}
	start := int(s.sentOffset - s.bufOffset)
	data := s.buf[start : start+n]
	offset := s.sentOffset
	s.sentOffset += uint64(n)
	fin := s.finSet && s.sentOffset == s.finOffset
	return data, offset, fin
}

// ack marks [offset, offset+len) as acknowledged and trims fully-acked
// bytes off the front of buf.
func (s *sendBuffer) ack(offset uint64, length uint64) {
	if length == 0 {
		return
	}
	s.acked.insertRange(offset, offset+length-1)
	for {
		r, ok := s.acked.frontRange()
		if !ok || r.start != s.bufOffset {
			break
		}
		n := r.end - r.start + 1
		if n > uint64(len(s.buf)) {
			n = uint64(len(s.buf))
		}
		s.buf = s.buf[n:]
		s.bufOffset += n
		s.acked.removeUntil(r.end)
	}
}

// complete reports whether every byte written (including FIN) has been
// acknowledged.
func (s *sendBuffer) complete() bool {
	return s.finSet && s.bufOffset >= s.finOffset
}

// hasFlushable reports whether there is unsent or re-queued data.
func (s *sendBuffer) hasFlushable() bool {
	if len(s.resend) > 0 {
		return true
	}
	unsent := uint64(len(s.buf)) - (s.sentOffset - s.bufOffset)
	return unsent > 0
}

// recvBuffer reassembles out-of-order byte ranges into a contiguous,
// readable stream (spec.md §8 scenario 3).
type recvBuffer struct {
	ready        []byte // contiguous bytes available starting at readOffset
	readOffset   uint64
	pending      []byteChunk // out-of-order chunks, sorted by offset; chunks may overlap, drain skips bytes already delivered
	finSet       bool
	finOffset    uint64
	maxRecvOffset uint64 // highest byte offset observed across any chunk, for flow-control accounting on reset
}

type byteChunk struct {
	offset uint64
	data   []byte
}

// push inserts a received range, merging any chunks that become contiguous
// with readOffset. Returns FinalOffsetError if fin contradicts a
// previously-observed final offset.
func (s *recvBuffer) push(data []byte, offset uint64, fin bool) error {
	end := offset + uint64(len(data))
	if end > s.maxRecvOffset {
		s.maxRecvOffset = end
	}
	if fin {
		if s.finSet && s.finOffset != end {
			return newError(FinalOffsetError, "")
		}
		s.finSet = true
		s.finOffset = end
	} else if s.finSet && end > s.finOffset {
		return newError(FinalOffsetError, "")
	}
	if end <= s.readOffset {
		return nil // fully duplicate
	}
	if offset < s.readOffset {
		data = data[s.readOffset-offset:]
		offset = s.readOffset
	}
	if len(data) > 0 {
		s.insertChunk(offset, data)
	}
	s.drain()
	return nil
}

func (s *recvBuffer) insertChunk(offset uint64, data []byte) {
	c := byteChunk{offset: offset, data: data}
	i := 0
	for ; i < len(s.pending); i++ {
		if s.pending[i].offset >= offset {
			break
		}
	}
	s.pending = append(s.pending, byteChunk{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = c
}

// drain moves any pending chunks that are now contiguous with readOffset
// into ready.
func (s *recvBuffer) drain() {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(s.pending); i++ {
			c := s.pending[i]
			end := c.offset + uint64(len(c.data))
			if end <= s.readOffset {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				changed = true
				break
			}
			if c.offset > s.readOffset {
				continue
			}
			start := s.readOffset - c.offset
			s.ready = append(s.ready, c.data[start:]...)
			s.readOffset += uint64(len(c.data)) - start
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			changed = true
			break
		}
	}
}

// read drains up to len(p) contiguous bytes. It returns (0, false) when no
// data is currently available.
func (s *recvBuffer) read(p []byte) (int, bool) {
	if len(s.ready) == 0 {
		return 0, false
	}
	n := copy(p, s.ready)
	s.ready = s.ready[n:]
	return n, true
}

// finished reports whether FIN has been received and all bytes up to it
// have been delivered.
func (s *recvBuffer) finished() bool {
	return s.finSet && len(s.ready) == 0 && s.readOffset >= s.finOffset
}

// reset records a RST_STREAM's final size (spec.md §4.5 RST_STREAM), and
// returns how many additional bytes must be counted against connection-level
// flow control (bytes beyond what any STREAM frame already disclosed).
// A final size inconsistent with a previously observed one is rejected.
func (s *recvBuffer) reset(finalSize uint64) (int, error) {
	if s.finSet && s.finOffset != finalSize {
		return 0, newError(FinalOffsetError, "")
	}
	if finalSize < s.maxRecvOffset {
		return 0, newError(FinalOffsetError, "")
	}
	extra := finalSize - s.maxRecvOffset
	s.maxRecvOffset = finalSize
	s.finSet = true
	s.finOffset = finalSize
	return int(extra), nil
}
