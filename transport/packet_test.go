package transport

import "testing"

func TestPeekDestinationCIDShortHeader(t *testing.T) {
	dcid := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := append([]byte{0x40}, dcid...)
	b = append(b, 0xaa, 0xbb) // trailing packet-number/payload bytes

	got, err := PeekDestinationCID(b, len(dcid))
	if err != nil {
		t.Fatalf("PeekDestinationCID: %v", err)
	}
	if string(got) != string(dcid) {
		t.Fatalf("got %x, want %x", got, dcid)
	}
}

func TestPeekDestinationCIDLongHeader(t *testing.T) {
	dcid := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	scid := []byte{1, 2}
	b := []byte{0xc0, 0x00, 0x00, 0x00, 0x01} // long header, version 1
	b = append(b, byte(len(dcid)<<4|len(scid)))
	b = append(b, dcid...)
	b = append(b, scid...)
	b = append(b, 0x00) // token length / rest, unused by PeekDestinationCID

	got, err := PeekDestinationCID(b, 8)
	if err != nil {
		t.Fatalf("PeekDestinationCID: %v", err)
	}
	if string(got) != string(dcid) {
		t.Fatalf("got %x, want %x", got, dcid)
	}
}

func TestPeekDestinationCIDShortPacketErrors(t *testing.T) {
	if _, err := PeekDestinationCID(nil, 8); err == nil {
		t.Fatalf("expected error for empty packet")
	}
	// Short header claiming an 8-byte dcid but only 3 bytes follow the flag.
	if _, err := PeekDestinationCID([]byte{0x40, 1, 2, 3}, 8); err == nil {
		t.Fatalf("expected error for truncated short-header dcid")
	}
}

func TestDecodeHeaderLongHeaderInitial(t *testing.T) {
	dcid := []byte{1, 2, 3, 4}
	scid := []byte{5, 6}
	token := []byte{9, 9}

	b := []byte{0xc0 | (longTypeInitial << 4), 0x00, 0x00, 0x00, 0x01}
	b = append(b, byte(len(dcid)<<4|len(scid)))
	b = append(b, dcid...)
	b = append(b, scid...)
	b = putVarint(b, uint64(len(token)))
	b = append(b, token...)
	b = putVarint(b, 20) // Length: packet number + payload bytes that would follow

	var p packet
	n, err := p.decodeHeader(b)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if n != len(b) {
		t.Fatalf("decodeHeader consumed %d, want %d", n, len(b))
	}
	if p.typ != packetTypeInitial {
		t.Fatalf("typ = %v, want packetTypeInitial", p.typ)
	}
	if string(p.header.dcid) != string(dcid) || string(p.header.scid) != string(scid) {
		t.Fatalf("dcid/scid mismatch: got dcid=%x scid=%x", p.header.dcid, p.header.scid)
	}
	if string(p.token) != string(token) {
		t.Fatalf("token = %x, want %x", p.token, token)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	dcid := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := append([]byte{0x40}, dcid...)

	p := packet{header: packetHeader{dcil: uint8(len(dcid))}}
	n, err := p.decodeHeader(b)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if n != len(b) {
		t.Fatalf("decodeHeader consumed %d, want %d", n, len(b))
	}
	if p.typ != packetTypeShort {
		t.Fatalf("typ = %v, want packetTypeShort", p.typ)
	}
	if string(p.header.dcid) != string(dcid) {
		t.Fatalf("dcid = %x, want %x", p.header.dcid, dcid)
	}
}
