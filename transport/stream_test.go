package transport

import (
	"io"
	"testing"
)

func TestStreamWriteReadRoundTrip(t *testing.T) {
	s := newStream(0, true, true)
	if _, err := s.Write([]byte("hello ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.Write([]byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, offset, fin := s.popSend(4096)
	if offset != 0 || fin {
		t.Fatalf("popSend offset=%d fin=%v, want offset=0 fin=false", offset, fin)
	}
	if string(data) != "hello world" {
		t.Fatalf("popSend data = %q", data)
	}

	if err := s.pushRecv(data, 0, false); err != nil {
		t.Fatalf("pushRecv: %v", err)
	}
	buf := make([]byte, 64)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "hello world" {
		t.Fatalf("read = %q", buf[:n])
	}
}

func TestStreamReadReturnsEOFAfterFin(t *testing.T) {
	s := newStream(4, false, true)
	if err := s.pushRecv([]byte("bye"), 0, true); err != nil {
		t.Fatalf("pushRecv: %v", err)
	}
	buf := make([]byte, 16)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if string(buf[:n]) != "bye" {
		t.Fatalf("read = %q", buf[:n])
	}
	if _, err := s.Read(buf); err != io.EOF {
		t.Fatalf("second read error = %v, want io.EOF", err)
	}
}

func TestStreamOutOfOrderReassembly(t *testing.T) {
	s := newStream(0, true, true)
	if err := s.pushRecv([]byte("world"), 6, true); err != nil {
		t.Fatalf("pushRecv second half: %v", err)
	}
	buf := make([]byte, 16)
	if n, _ := s.Read(buf); n != 0 {
		t.Fatalf("expected no data readable before the gap is filled, got %d bytes", n)
	}
	if err := s.pushRecv([]byte("hello "), 0, false); err != nil {
		t.Fatalf("pushRecv first half: %v", err)
	}
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "hello world" {
		t.Fatalf("reassembled = %q, want %q", buf[:n], "hello world")
	}
}

func TestStreamWriteAfterCloseFails(t *testing.T) {
	s := newStream(0, true, true)
	s.Close()
	// Draining the FIN through popSend is what transitions the stream to
	// half-closed-local; Close alone only marks the send buffer finished.
	s.popSend(4096)
	if _, err := s.Write([]byte("x")); err != io.ErrClosedPipe {
		t.Fatalf("write after close error = %v, want io.ErrClosedPipe", err)
	}
}

func TestStreamMapEnforcesLocalLimit(t *testing.T) {
	var m streamMap
	m.init(1, 1)
	m.setPeerMaxStreamsBidi(10)

	if _, err := m.create(0, true, true); err != nil {
		t.Fatalf("first locally-initiated stream: %v", err)
	}
	if _, err := m.create(4, true, true); err != nil {
		t.Fatalf("second locally-initiated stream (under peer limit): %v", err)
	}

	// Peer-initiated stream ordinal 2 (id=4, bidi) exceeds the local limit
	// of 1 we advertised.
	if _, err := m.create(4, false, true); err == nil {
		t.Fatalf("expected StreamIDError for peer exceeding advertised stream limit")
	}
}

func TestStreamMapCreateWithinPeerLimit(t *testing.T) {
	var m streamMap
	m.init(10, 10)
	m.setPeerMaxStreamsBidi(1)

	if _, err := m.create(0, true, true); err != nil {
		t.Fatalf("first stream within peer limit: %v", err)
	}
	if _, err := m.create(4, true, true); err == nil {
		t.Fatalf("expected StreamIDError exceeding peer-granted limit of 1")
	}
}
