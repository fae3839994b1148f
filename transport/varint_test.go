package transport

import (
	"bytes"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 63, 64, 16383, 16384, 1073741823, 1073741824,
		maxVarint, 151288809941952652,
	}
	for _, n := range values {
		b := putVarint(nil, n)
		if len(b) != varintLen(n) {
			t.Fatalf("varintLen(%d)=%d, encoded length=%d", n, varintLen(n), len(b))
		}
		var got uint64
		n2 := getVarint(b, &got)
		if n2 != len(b) || got != n {
			t.Fatalf("round trip failed for %d: got=%d consumed=%d", n, got, n2)
		}
	}
}

func TestVarintLiteralEncodings(t *testing.T) {
	b := putVarint(nil, 0x3FFF)
	if !bytes.Equal(b, []byte{0x7F, 0xFF}) {
		t.Fatalf("encode(0x3FFF) = % x, want 7f ff", b)
	}
	b = putVarint(nil, 151288809941952652)
	want := []byte{0xC2, 0x19, 0x7C, 0x5E, 0xFF, 0x14, 0xE8, 0x8C}
	if !bytes.Equal(b, want) {
		t.Fatalf("encode(151288809941952652) = % x, want % x", b, want)
	}
}

func TestGetVarintShortBuffer(t *testing.T) {
	var out uint64
	if n := getVarint(nil, &out); n != 0 {
		t.Fatalf("getVarint(nil) = %d, want 0", n)
	}
	// First byte claims 8-byte form but only 2 bytes are available.
	b := []byte{0xC0, 0x01}
	if n := getVarint(b, &out); n != 0 {
		t.Fatalf("getVarint(short) = %d, want 0", n)
	}
}
