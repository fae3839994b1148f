package transport

import "testing"

func TestAckFrameRoundTrip(t *testing.T) {
	var pending rangeSet
	pending.insertRange(8, 10)
	pending.insertRange(2, 5)
	f := newAckFrame(1234, pending)

	buf := make([]byte, f.encodedLen())
	n, err := f.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("encode wrote %d, encodedLen said %d", n, len(buf))
	}

	var got ackFrame
	n2, err := got.decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n2 != n {
		t.Fatalf("decode consumed %d, want %d", n2, n)
	}
	if got.largestAck != f.largestAck || got.ackDelay != f.ackDelay || got.firstAckRange != f.firstAckRange {
		t.Fatalf("decoded fields mismatch: got %+v want %+v", got, *f)
	}
	if len(got.blocks) != len(f.blocks) {
		t.Fatalf("decoded %d ack blocks, want %d", len(got.blocks), len(f.blocks))
	}
}

func TestStreamFrameRoundTrip(t *testing.T) {
	data := []byte("hello quic")
	f := newStreamFrame(4, data, 16, true)

	buf := make([]byte, f.encodedLen())
	n, err := f.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got streamFrame
	n2, err := got.decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n2 != n {
		t.Fatalf("decode consumed %d, want %d", n2, n)
	}
	if got.streamID != f.streamID || got.offset != f.offset || !got.fin {
		t.Fatalf("decoded fields mismatch: got %+v", got)
	}
	if string(got.data) != string(data) {
		t.Fatalf("decoded data %q, want %q", got.data, data)
	}
}

func TestStreamFrameNoOffsetOmitsField(t *testing.T) {
	f := newStreamFrame(0, []byte("x"), 0, false)
	buf := make([]byte, f.encodedLen())
	if _, err := f.encode(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf[0]&0x04 != 0 {
		t.Fatalf("offset bit set despite zero offset")
	}
}

func TestConnectionCloseFrameRoundTrip(t *testing.T) {
	reason := []byte("protocol violation detected")
	f := newConnectionCloseFrame(uint64(ProtocolViolation), uint64(frameTypeStream), reason, false)

	buf := make([]byte, f.encodedLen())
	n, err := f.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got connectionCloseFrame
	n2, err := got.decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n2 != n {
		t.Fatalf("decode consumed %d bytes, want %d (reason phrase must not be truncated)", n2, n)
	}
	if string(got.reasonPhrase) != string(reason) {
		t.Fatalf("decoded reason %q, want %q", got.reasonPhrase, reason)
	}
	if got.errorCode != uint64(ProtocolViolation) || got.frameType != uint64(frameTypeStream) {
		t.Fatalf("decoded fields mismatch: got %+v", got)
	}
}

func TestApplicationCloseFrameOmitsFrameType(t *testing.T) {
	f := newConnectionCloseFrame(7, 0, []byte("bye"), true)
	buf := make([]byte, f.encodedLen())
	n, err := f.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got connectionCloseFrame
	if _, err := got.decode(buf[:n]); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.application || got.frameType != 0 {
		t.Fatalf("expected application close with zero frame type, got %+v", got)
	}
}

func TestResetStreamAndStopSendingRoundTrip(t *testing.T) {
	rs := newResetStreamFrame(12, 1, 4096)
	buf := make([]byte, rs.encodedLen())
	n, err := rs.encode(buf)
	if err != nil {
		t.Fatalf("reset stream encode: %v", err)
	}
	var gotRS resetStreamFrame
	if _, err := gotRS.decode(buf[:n]); err != nil {
		t.Fatalf("reset stream decode: %v", err)
	}
	if gotRS.streamID != 12 || gotRS.errorCode != 1 || gotRS.finalSize != 4096 {
		t.Fatalf("reset stream mismatch: %+v", gotRS)
	}

	ss := newStopSendingFrame(12, 2)
	buf2 := make([]byte, ss.encodedLen())
	n2, err := ss.encode(buf2)
	if err != nil {
		t.Fatalf("stop sending encode: %v", err)
	}
	var gotSS stopSendingFrame
	if _, err := gotSS.decode(buf2[:n2]); err != nil {
		t.Fatalf("stop sending decode: %v", err)
	}
	if gotSS.streamID != 12 || gotSS.errorCode != 2 {
		t.Fatalf("stop sending mismatch: %+v", gotSS)
	}
}

func TestPaddingFrameDecodeCoalesces(t *testing.T) {
	b := make([]byte, 5)
	var f paddingFrame
	n, err := f.decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != 5 || f.length != 5 {
		t.Fatalf("expected 5 coalesced padding bytes, got n=%d length=%d", n, f.length)
	}
}

func TestAckEliciting(t *testing.T) {
	cases := []struct {
		typ  uint64
		want bool
	}{
		{frameTypePadding, false},
		{frameTypeAck, false},
		{frameTypeAckECN, false},
		{frameTypeConnectionClose, false},
		{frameTypeApplicationClose, false},
		{frameTypePing, true},
		{frameTypeStream, true},
		{frameTypeCrypto, true},
	}
	for _, c := range cases {
		if got := isFrameAckEliciting(c.typ); got != c.want {
			t.Errorf("isFrameAckEliciting(0x%x) = %v, want %v", c.typ, got, c.want)
		}
	}
}
