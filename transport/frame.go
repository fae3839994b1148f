package transport

// Frame type bytes, per RFC 9000 §19.
const (
	frameTypePadding           = 0x00
	frameTypePing              = 0x01
	frameTypeAck               = 0x02
	frameTypeAckECN            = 0x03
	frameTypeResetStream       = 0x04
	frameTypeStopSending       = 0x05
	frameTypeCrypto            = 0x06
	frameTypeNewToken          = 0x07
	frameTypeStream            = 0x08
	frameTypeStreamEnd         = 0x0f
	frameTypeMaxData           = 0x10
	frameTypeMaxStreamData     = 0x11
	frameTypeMaxStreamsBidi    = 0x12
	frameTypeMaxStreamsUni     = 0x13
	frameTypeDataBlocked       = 0x14
	frameTypeStreamDataBlocked = 0x15
	frameTypeStreamsBlockedBidi = 0x16
	frameTypeStreamsBlockedUni  = 0x17
	frameTypeNewConnectionID   = 0x18
	frameTypePathChallenge     = 0x1a
	frameTypePathResponse      = 0x1b
	frameTypeConnectionClose   = 0x1c
	frameTypeApplicationClose  = 0x1d
	frameTypeHanshakeDone      = 0x1e
)

// frame is the tagged-variant interface every frame kind implements
// (spec.md §3 "Frame").
type frame interface {
	encodedLen() int
	encode(b []byte) (int, error)
	String() string
}

// isFrameAckEliciting reports whether a packet carrying only this frame
// type (plus PADDING) requires the peer to acknowledge it (spec.md §4.5).
func isFrameAckEliciting(typ uint64) bool {
	switch typ {
	case frameTypePadding, frameTypeAck, frameTypeAckECN, frameTypeConnectionClose, frameTypeApplicationClose:
		return false
	default:
		return true
	}
}

// isFrameInFlightEligible reports whether a frame type, if the sole
// non-ACK content of a packet, still counts the packet as "in flight" for
// congestion-control purposes (spec.md §8 "in-flight ledger": everything
// except ACK-only packets).
func isFrameInFlightEligible(typ uint64) bool {
	return typ != frameTypeAck && typ != frameTypeAckECN
}

func encodeFrames(b []byte, frames []frame) (int, error) {
	off := 0
	for _, f := range frames {
		n, err := f.encode(b[off:])
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// ---- PADDING ----

type paddingFrame struct {
	length int
}

func newPaddingFrame(length int) *paddingFrame { return &paddingFrame{length: length} }

func (f *paddingFrame) encodedLen() int { return f.length }

func (f *paddingFrame) encode(b []byte) (int, error) {
	if len(b) < f.length {
		return 0, errShortBuffer
	}
	for i := 0; i < f.length; i++ {
		b[i] = frameTypePadding
	}
	return f.length, nil
}

func (f *paddingFrame) String() string { return "PADDING" }

// decode coalesces consecutive 0x00 bytes into one logical frame, counting
// them (spec.md §4.3).
func (f *paddingFrame) decode(b []byte) (int, error) {
	n := 0
	for n < len(b) && b[n] == frameTypePadding {
		n++
	}
	f.length = n
	return n, nil
}

// ---- PING ----

type pingFrame struct{}

func (f *pingFrame) encodedLen() int { return 1 }
func (f *pingFrame) encode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, errShortBuffer
	}
	b[0] = frameTypePing
	return 1, nil
}
func (f *pingFrame) String() string { return "PING" }
func (f *pingFrame) decode(b []byte) (int, error) {
	if len(b) < 1 || b[0] != frameTypePing {
		return 0, newError(FrameEncodingError, "ping")
	}
	return 1, nil
}

// ---- ACK / ACK_ECN ----

type ecnCounts struct {
	ect0, ect1, ce uint64
	present        bool
}

type ackFrame struct {
	largestAck    uint64
	ackDelay      uint64
	firstAckRange uint64
	blocks        []ackBlock
	ecn           ecnCounts
}

func newAckFrame(ackDelay uint64, pending rangeSet) *ackFrame {
	largest, first, blocks := pending.ackBlocks()
	return &ackFrame{largestAck: largest, ackDelay: ackDelay, firstAckRange: first, blocks: blocks}
}

func (f *ackFrame) toRangeSet() *rangeSet {
	return rangeSetFromAck(f.largestAck, f.firstAckRange, f.blocks)
}

func (f *ackFrame) encodedLen() int {
	n := 1 + varintLen(f.largestAck) + varintLen(f.ackDelay) +
		varintLen(uint64(len(f.blocks))) + varintLen(f.firstAckRange)
	for _, blk := range f.blocks {
		n += varintLen(blk.gap) + varintLen(blk.block)
	}
	if f.ecn.present {
		n += varintLen(f.ecn.ect0) + varintLen(f.ecn.ect1) + varintLen(f.ecn.ce)
	}
	return n
}

func (f *ackFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	off := 0
	if f.ecn.present {
		b[off] = frameTypeAckECN
	} else {
		b[off] = frameTypeAck
	}
	off++
	off = len(putVarint(b[:off], f.largestAck))
	off = len(putVarint(b[:off], f.ackDelay))
	off = len(putVarint(b[:off], uint64(len(f.blocks))))
	off = len(putVarint(b[:off], f.firstAckRange))
	for _, blk := range f.blocks {
		off = len(putVarint(b[:off], blk.gap))
		off = len(putVarint(b[:off], blk.block))
	}
	if f.ecn.present {
		off = len(putVarint(b[:off], f.ecn.ect0))
		off = len(putVarint(b[:off], f.ecn.ect1))
		off = len(putVarint(b[:off], f.ecn.ce))
	}
	return off, nil
}

func (f *ackFrame) String() string { return "ACK" }

func (f *ackFrame) decode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, newError(FrameEncodingError, "ack")
	}
	ecn := b[0] == frameTypeAckECN
	off := 1
	var largest, delay, count, first uint64
	n := getVarint(b[off:], &largest)
	if n == 0 {
		return 0, newError(FrameEncodingError, "ack largest")
	}
	off += n
	n = getVarint(b[off:], &delay)
	if n == 0 {
		return 0, newError(FrameEncodingError, "ack delay")
	}
	off += n
	n = getVarint(b[off:], &count)
	if n == 0 {
		return 0, newError(FrameEncodingError, "ack count")
	}
	off += n
	n = getVarint(b[off:], &first)
	if n == 0 {
		return 0, newError(FrameEncodingError, "ack first range")
	}
	off += n
	f.largestAck = largest
	f.ackDelay = delay
	f.firstAckRange = first
	f.blocks = f.blocks[:0]
	for i := uint64(0); i < count; i++ {
		var gap, block uint64
		n = getVarint(b[off:], &gap)
		if n == 0 {
			return 0, newError(FrameEncodingError, "ack gap")
		}
		off += n
		n = getVarint(b[off:], &block)
		if n == 0 {
			return 0, newError(FrameEncodingError, "ack block")
		}
		off += n
		f.blocks = append(f.blocks, ackBlock{gap: gap, block: block})
	}
	if ecn {
		var ect0, ect1, ce uint64
		n = getVarint(b[off:], &ect0)
		if n == 0 {
			return 0, newError(FrameEncodingError, "ack ect0")
		}
		off += n
		n = getVarint(b[off:], &ect1)
		if n == 0 {
			return 0, newError(FrameEncodingError, "ack ect1")
		}
		off += n
		n = getVarint(b[off:], &ce)
		if n == 0 {
			return 0, newError(FrameEncodingError, "ack ce")
		}
		off += n
		f.ecn = ecnCounts{ect0: ect0, ect1: ect1, ce: ce, present: true}
	} else {
		f.ecn = ecnCounts{}
	}
	return off, nil
}

// ---- RESET_STREAM ----

type resetStreamFrame struct {
	streamID  uint64
	errorCode uint64
	finalSize uint64
}

func newResetStreamFrame(streamID, errorCode, finalSize uint64) *resetStreamFrame {
	return &resetStreamFrame{streamID: streamID, errorCode: errorCode, finalSize: finalSize}
}

func (f *resetStreamFrame) encodedLen() int {
	return 1 + varintLen(f.streamID) + varintLen(f.errorCode) + varintLen(f.finalSize)
}

func (f *resetStreamFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeResetStream
	off := 1
	off = len(putVarint(b[:off], f.streamID))
	off = len(putVarint(b[:off], f.errorCode))
	off = len(putVarint(b[:off], f.finalSize))
	return off, nil
}

func (f *resetStreamFrame) String() string { return "RESET_STREAM" }

func (f *resetStreamFrame) decode(b []byte) (int, error) {
	off := 1
	var id, code, final uint64
	n := getVarint(b[off:], &id)
	if n == 0 {
		return 0, newError(FrameEncodingError, "reset stream id")
	}
	off += n
	n = getVarint(b[off:], &code)
	if n == 0 {
		return 0, newError(FrameEncodingError, "reset stream code")
	}
	off += n
	n = getVarint(b[off:], &final)
	if n == 0 {
		return 0, newError(FrameEncodingError, "reset stream final size")
	}
	off += n
	f.streamID, f.errorCode, f.finalSize = id, code, final
	return off, nil
}

// ---- STOP_SENDING ----

type stopSendingFrame struct {
	streamID  uint64
	errorCode uint64
}

func newStopSendingFrame(streamID, errorCode uint64) *stopSendingFrame {
	return &stopSendingFrame{streamID: streamID, errorCode: errorCode}
}

func (f *stopSendingFrame) encodedLen() int {
	return 1 + varintLen(f.streamID) + varintLen(f.errorCode)
}

func (f *stopSendingFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeStopSending
	off := 1
	off = len(putVarint(b[:off], f.streamID))
	off = len(putVarint(b[:off], f.errorCode))
	return off, nil
}

func (f *stopSendingFrame) String() string { return "STOP_SENDING" }

func (f *stopSendingFrame) decode(b []byte) (int, error) {
	off := 1
	var id, code uint64
	n := getVarint(b[off:], &id)
	if n == 0 {
		return 0, newError(FrameEncodingError, "stop sending id")
	}
	off += n
	n = getVarint(b[off:], &code)
	if n == 0 {
		return 0, newError(FrameEncodingError, "stop sending code")
	}
	off += n
	f.streamID, f.errorCode = id, code
	return off, nil
}

// ---- CRYPTO ----

type cryptoFrame struct {
	offset uint64
	data   []byte
}

func newCryptoFrame(data []byte, offset uint64) *cryptoFrame {
	return &cryptoFrame{data: data, offset: offset}
}

func (f *cryptoFrame) encodedLen() int {
	return 1 + varintLen(f.offset) + varintLen(uint64(len(f.data))) + len(f.data)
}

func (f *cryptoFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeCrypto
	off := 1
	off = len(putVarint(b[:off], f.offset))
	off = len(putVarint(b[:off], uint64(len(f.data))))
	off += copy(b[off:], f.data)
	return off, nil
}

func (f *cryptoFrame) String() string { return "CRYPTO" }

func (f *cryptoFrame) decode(b []byte) (int, error) {
	off := 1
	var offset, length uint64
	n := getVarint(b[off:], &offset)
	if n == 0 {
		return 0, newError(FrameEncodingError, "crypto offset")
	}
	off += n
	n = getVarint(b[off:], &length)
	if n == 0 {
		return 0, newError(FrameEncodingError, "crypto length")
	}
	off += n
	if uint64(len(b)-off) < length {
		return 0, newError(FrameEncodingError, "crypto data")
	}
	f.offset = offset
	f.data = b[off : off+int(length)]
	off += int(length)
	return off, nil
}

const maxCryptoFrameOverhead = 1 + 8 + 8 // type + max offset varint + max length varint

// ---- NEW_TOKEN ----

type newTokenFrame struct {
	token []byte
}

func newNewTokenFrame(token []byte) *newTokenFrame { return &newTokenFrame{token: token} }

func (f *newTokenFrame) encodedLen() int {
	return 1 + varintLen(uint64(len(f.token))) + len(f.token)
}

func (f *newTokenFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeNewToken
	off := 1
	off = len(putVarint(b[:off], uint64(len(f.token))))
	off += copy(b[off:], f.token)
	return off, nil
}

func (f *newTokenFrame) String() string { return "NEW_TOKEN" }

func (f *newTokenFrame) decode(b []byte) (int, error) {
	off := 1
	var length uint64
	n := getVarint(b[off:], &length)
	if n == 0 {
		return 0, newError(FrameEncodingError, "new token length")
	}
	off += n
	if uint64(len(b)-off) < length {
		return 0, newError(FrameEncodingError, "new token")
	}
	f.token = b[off : off+int(length)]
	off += int(length)
	return off, nil
}

// ---- STREAM ----

type streamFrame struct {
	streamID uint64
	offset   uint64
	data     []byte
	fin      bool
}

func newStreamFrame(streamID uint64, data []byte, offset uint64, fin bool) *streamFrame {
	return &streamFrame{streamID: streamID, data: data, offset: offset, fin: fin}
}

func (f *streamFrame) encodedLen() int {
	n := 1 + varintLen(f.streamID)
	if f.offset > 0 {
		n += varintLen(f.offset)
	}
	n += varintLen(uint64(len(f.data))) + len(f.data)
	return n
}

const maxStreamFrameOverhead = 1 + 8 + 8 + 8 // type + id + offset + length, all worst-case

func (f *streamFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	typ := byte(frameTypeStream)
	typ |= 0x02 // LEN always present
	if f.fin {
		typ |= 0x01
	}
	if f.offset > 0 {
		typ |= 0x04
	}
	b[0] = typ
	off := 1
	off = len(putVarint(b[:off], f.streamID))
	if f.offset > 0 {
		off = len(putVarint(b[:off], f.offset))
	}
	off = len(putVarint(b[:off], uint64(len(f.data))))
	off += copy(b[off:], f.data)
	return off, nil
}

func (f *streamFrame) String() string { return "STREAM" }

func (f *streamFrame) decode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, newError(FrameEncodingError, "stream")
	}
	typ := b[0]
	fin := typ&0x01 != 0
	hasLen := typ&0x02 != 0
	hasOff := typ&0x04 != 0
	off := 1
	var id uint64
	n := getVarint(b[off:], &id)
	if n == 0 {
		return 0, newError(FrameEncodingError, "stream id")
	}
	off += n
	var offset uint64
	if hasOff {
		n = getVarint(b[off:], &offset)
		if n == 0 {
			return 0, newError(FrameEncodingError, "stream offset")
		}
		off += n
	}
	var length uint64
	if hasLen {
		n = getVarint(b[off:], &length)
		if n == 0 {
			return 0, newError(FrameEncodingError, "stream length")
		}
		off += n
	} else {
		length = uint64(len(b) - off) // extends to end of packet
	}
	if uint64(len(b)-off) < length {
		return 0, newError(FrameEncodingError, "stream data")
	}
	f.streamID = id
	f.offset = offset
	f.data = b[off : off+int(length)]
	f.fin = fin
	off += int(length)
	return off, nil
}

// ---- MAX_DATA / MAX_STREAM_DATA / MAX_STREAMS ----

type maxDataFrame struct {
	maximumData uint64
}

func newMaxDataFrame(max uint64) *maxDataFrame { return &maxDataFrame{maximumData: max} }

func (f *maxDataFrame) encodedLen() int { return 1 + varintLen(f.maximumData) }
func (f *maxDataFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeMaxData
	return len(putVarint(b[:1], f.maximumData)), nil
}
func (f *maxDataFrame) String() string { return "MAX_DATA" }
func (f *maxDataFrame) decode(b []byte) (int, error) {
	var max uint64
	n := getVarint(b[1:], &max)
	if n == 0 {
		return 0, newError(FrameEncodingError, "max data")
	}
	f.maximumData = max
	return 1 + n, nil
}

type maxStreamDataFrame struct {
	streamID    uint64
	maximumData uint64
}

func newMaxStreamDataFrame(streamID, max uint64) *maxStreamDataFrame {
	return &maxStreamDataFrame{streamID: streamID, maximumData: max}
}

func (f *maxStreamDataFrame) encodedLen() int {
	return 1 + varintLen(f.streamID) + varintLen(f.maximumData)
}
func (f *maxStreamDataFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeMaxStreamData
	off := len(putVarint(b[:1], f.streamID))
	off = len(putVarint(b[:off], f.maximumData))
	return off, nil
}
func (f *maxStreamDataFrame) String() string { return "MAX_STREAM_DATA" }
func (f *maxStreamDataFrame) decode(b []byte) (int, error) {
	off := 1
	var id, max uint64
	n := getVarint(b[off:], &id)
	if n == 0 {
		return 0, newError(FrameEncodingError, "max stream data id")
	}
	off += n
	n = getVarint(b[off:], &max)
	if n == 0 {
		return 0, newError(FrameEncodingError, "max stream data")
	}
	off += n
	f.streamID, f.maximumData = id, max
	return off, nil
}

type maxStreamsFrame struct {
	maximumStreams uint64
	bidi           bool
}

func newMaxStreamsFrame(max uint64, bidi bool) *maxStreamsFrame {
	return &maxStreamsFrame{maximumStreams: max, bidi: bidi}
}

func (f *maxStreamsFrame) encodedLen() int { return 1 + varintLen(f.maximumStreams) }
func (f *maxStreamsFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	if f.bidi {
		b[0] = frameTypeMaxStreamsBidi
	} else {
		b[0] = frameTypeMaxStreamsUni
	}
	return len(putVarint(b[:1], f.maximumStreams)), nil
}
func (f *maxStreamsFrame) String() string { return "MAX_STREAMS" }
func (f *maxStreamsFrame) decode(b []byte) (int, error) {
	f.bidi = b[0] == frameTypeMaxStreamsBidi
	var max uint64
	n := getVarint(b[1:], &max)
	if n == 0 {
		return 0, newError(FrameEncodingError, "max streams")
	}
	f.maximumStreams = max
	return 1 + n, nil
}

// ---- DATA_BLOCKED / STREAM_DATA_BLOCKED / STREAMS_BLOCKED ----

type dataBlockedFrame struct {
	dataLimit uint64
}

func newDataBlockedFrame(limit uint64) *dataBlockedFrame { return &dataBlockedFrame{dataLimit: limit} }
func (f *dataBlockedFrame) encodedLen() int              { return 1 + varintLen(f.dataLimit) }
func (f *dataBlockedFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeDataBlocked
	return len(putVarint(b[:1], f.dataLimit)), nil
}
func (f *dataBlockedFrame) String() string { return "DATA_BLOCKED" }
func (f *dataBlockedFrame) decode(b []byte) (int, error) {
	var limit uint64
	n := getVarint(b[1:], &limit)
	if n == 0 {
		return 0, newError(FrameEncodingError, "data blocked")
	}
	f.dataLimit = limit
	return 1 + n, nil
}

type streamDataBlockedFrame struct {
	streamID  uint64
	dataLimit uint64
}

func newStreamDataBlockedFrame(streamID, limit uint64) *streamDataBlockedFrame {
	return &streamDataBlockedFrame{streamID: streamID, dataLimit: limit}
}
func (f *streamDataBlockedFrame) encodedLen() int {
	return 1 + varintLen(f.streamID) + varintLen(f.dataLimit)
}
func (f *streamDataBlockedFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeStreamDataBlocked
	off := len(putVarint(b[:1], f.streamID))
	off = len(putVarint(b[:off], f.dataLimit))
	return off, nil
}
func (f *streamDataBlockedFrame) String() string { return "STREAM_DATA_BLOCKED" }
func (f *streamDataBlockedFrame) decode(b []byte) (int, error) {
	off := 1
	var id, limit uint64
	n := getVarint(b[off:], &id)
	if n == 0 {
		return 0, newError(FrameEncodingError, "stream data blocked id")
	}
	off += n
	n = getVarint(b[off:], &limit)
	if n == 0 {
		return 0, newError(FrameEncodingError, "stream data blocked")
	}
	off += n
	f.streamID, f.dataLimit = id, limit
	return off, nil
}

type streamsBlockedFrame struct {
	streamLimit uint64
	bidi        bool
}

func newStreamsBlockedFrame(limit uint64, bidi bool) *streamsBlockedFrame {
	return &streamsBlockedFrame{streamLimit: limit, bidi: bidi}
}
func (f *streamsBlockedFrame) encodedLen() int { return 1 + varintLen(f.streamLimit) }
func (f *streamsBlockedFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	if f.bidi {
		b[0] = frameTypeStreamsBlockedBidi
	} else {
		b[0] = frameTypeStreamsBlockedUni
	}
	return len(putVarint(b[:1], f.streamLimit)), nil
}
func (f *streamsBlockedFrame) String() string { return "STREAMS_BLOCKED" }
func (f *streamsBlockedFrame) decode(b []byte) (int, error) {
	f.bidi = b[0] == frameTypeStreamsBlockedBidi
	var limit uint64
	n := getVarint(b[1:], &limit)
	if n == 0 {
		return 0, newError(FrameEncodingError, "streams blocked")
	}
	f.streamLimit = limit
	return 1 + n, nil
}

// ---- NEW_CONNECTION_ID ----

type newConnectionIDFrame struct {
	sequenceNumber uint64
	retirePriorTo  uint64
	connectionID   []byte
	resetToken     [16]byte
}

func (f *newConnectionIDFrame) encodedLen() int {
	return 1 + varintLen(f.sequenceNumber) + varintLen(f.retirePriorTo) + 1 + len(f.connectionID) + 16
}

func (f *newConnectionIDFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypeNewConnectionID
	off := len(putVarint(b[:1], f.sequenceNumber))
	off = len(putVarint(b[:off], f.retirePriorTo))
	b[off] = byte(len(f.connectionID))
	off++
	off += copy(b[off:], f.connectionID)
	off += copy(b[off:], f.resetToken[:])
	return off, nil
}

func (f *newConnectionIDFrame) String() string { return "NEW_CONNECTION_ID" }

func (f *newConnectionIDFrame) decode(b []byte) (int, error) {
	off := 1
	var seq, retire uint64
	n := getVarint(b[off:], &seq)
	if n == 0 {
		return 0, newError(FrameEncodingError, "new cid seq")
	}
	off += n
	n = getVarint(b[off:], &retire)
	if n == 0 {
		return 0, newError(FrameEncodingError, "new cid retire")
	}
	off += n
	if len(b) < off+1 {
		return 0, newError(FrameEncodingError, "new cid length")
	}
	cidLen := int(b[off])
	off++
	if len(b) < off+cidLen+16 {
		return 0, newError(FrameEncodingError, "new cid")
	}
	f.sequenceNumber = seq
	f.retirePriorTo = retire
	f.connectionID = b[off : off+cidLen]
	off += cidLen
	copy(f.resetToken[:], b[off:off+16])
	off += 16
	return off, nil
}

// ---- PATH_CHALLENGE / PATH_RESPONSE ----

type pathChallengeFrame struct {
	data [8]byte
}

func (f *pathChallengeFrame) encodedLen() int { return 1 + 8 }
func (f *pathChallengeFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypePathChallenge
	copy(b[1:9], f.data[:])
	return 9, nil
}
func (f *pathChallengeFrame) String() string { return "PATH_CHALLENGE" }
func (f *pathChallengeFrame) decode(b []byte) (int, error) {
	if len(b) < 9 {
		return 0, newError(FrameEncodingError, "path challenge")
	}
	copy(f.data[:], b[1:9])
	return 9, nil
}

type pathResponseFrame struct {
	data [8]byte
}

func (f *pathResponseFrame) encodedLen() int { return 1 + 8 }
func (f *pathResponseFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	b[0] = frameTypePathResponse
	copy(b[1:9], f.data[:])
	return 9, nil
}
func (f *pathResponseFrame) String() string { return "PATH_RESPONSE" }
func (f *pathResponseFrame) decode(b []byte) (int, error) {
	if len(b) < 9 {
		return 0, newError(FrameEncodingError, "path response")
	}
	copy(f.data[:], b[1:9])
	return 9, nil
}

// ---- CONNECTION_CLOSE / APPLICATION_CLOSE ----

type connectionCloseFrame struct {
	application  bool
	errorCode    uint64
	frameType    uint64 // transport-close only: frame that triggered the error, 0 if none
	reasonPhrase []byte
}

func newConnectionCloseFrame(errorCode, frameType uint64, reason []byte, application bool) *connectionCloseFrame {
	return &connectionCloseFrame{application: application, errorCode: errorCode, frameType: frameType, reasonPhrase: reason}
}

func (f *connectionCloseFrame) encodedLen() int {
	n := 1 + varintLen(f.errorCode)
	if !f.application {
		n += varintLen(f.frameType)
	}
	n += varintLen(uint64(len(f.reasonPhrase))) + len(f.reasonPhrase)
	return n
}

func (f *connectionCloseFrame) encode(b []byte) (int, error) {
	if len(b) < f.encodedLen() {
		return 0, errShortBuffer
	}
	if f.application {
		b[0] = frameTypeApplicationClose
	} else {
		b[0] = frameTypeConnectionClose
	}
	off := len(putVarint(b[:1], f.errorCode))
	if !f.application {
		off = len(putVarint(b[:off], f.frameType))
	}
	off = len(putVarint(b[:off], uint64(len(f.reasonPhrase))))
	off += copy(b[off:], f.reasonPhrase)
	return off, nil
}

func (f *connectionCloseFrame) String() string {
	if f.application {
		return "APPLICATION_CLOSE"
	}
	return "CONNECTION_CLOSE"
}

// decode reads the reason phrase as the `length` bytes immediately
// following its own VLIE length field.
func (f *connectionCloseFrame) decode(b []byte) (int, error) {
	f.application = b[0] == frameTypeApplicationClose
	off := 1
	var code uint64
	n := getVarint(b[off:], &code)
	if n == 0 {
		return 0, newError(FrameEncodingError, "connection close code")
	}
	off += n
	f.errorCode = code
	if !f.application {
		var ft uint64
		n = getVarint(b[off:], &ft)
		if n == 0 {
			return 0, newError(FrameEncodingError, "connection close frame type")
		}
		off += n
		f.frameType = ft
	} else {
		f.frameType = 0
	}
	var length uint64
	n = getVarint(b[off:], &length)
	if n == 0 {
		return 0, newError(FrameEncodingError, "connection close reason length")
	}
	off += n
	if uint64(len(b)-off) < length {
		return 0, newError(FrameEncodingError, "connection close reason")
	}
	f.reasonPhrase = b[off : off+int(length)]
	off += int(length)
	return off, nil
}

// ---- HANDSHAKE_DONE ----

type handshakeDoneFrame struct{}

func (f *handshakeDoneFrame) encodedLen() int { return 1 }
func (f *handshakeDoneFrame) encode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, errShortBuffer
	}
	b[0] = frameTypeHanshakeDone
	return 1, nil
}
func (f *handshakeDoneFrame) String() string { return "HANDSHAKE_DONE" }
func (f *handshakeDoneFrame) decode(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, newError(FrameEncodingError, "handshake done")
	}
	return 1, nil
}
