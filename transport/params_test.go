package transport

import (
	"bytes"
	"testing"
	"time"
)

func TestParametersRoundTrip(t *testing.T) {
	p := Parameters{
		InitialSourceCID:               []byte{1, 2, 3, 4},
		OriginalDestinationCID:         []byte{9, 9, 9, 9},
		InitialMaxData:                 1 << 20,
		InitialMaxStreamsBidi:          100,
		InitialMaxStreamsUni:           50,
		InitialMaxStreamDataBidiLocal:  65536,
		InitialMaxStreamDataBidiRemote: 65536,
		InitialMaxStreamDataUni:        65536,
		MaxIdleTimeout:                 30 * time.Second,
		AckDelayExponent:               3,
		MaxAckDelay:                    25 * time.Millisecond,
		MaxUDPPayloadSize:              1452,
		DisableActiveMigration:         true,
	}

	wire := p.Marshal()

	var got Parameters
	if err := got.Unmarshal(wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !bytes.Equal(got.InitialSourceCID, p.InitialSourceCID) {
		t.Errorf("InitialSourceCID = %x, want %x", got.InitialSourceCID, p.InitialSourceCID)
	}
	if !bytes.Equal(got.OriginalDestinationCID, p.OriginalDestinationCID) {
		t.Errorf("OriginalDestinationCID = %x, want %x", got.OriginalDestinationCID, p.OriginalDestinationCID)
	}
	if got.InitialMaxData != p.InitialMaxData {
		t.Errorf("InitialMaxData = %d, want %d", got.InitialMaxData, p.InitialMaxData)
	}
	if got.InitialMaxStreamsBidi != p.InitialMaxStreamsBidi || got.InitialMaxStreamsUni != p.InitialMaxStreamsUni {
		t.Errorf("stream limits mismatch: got bidi=%d uni=%d", got.InitialMaxStreamsBidi, got.InitialMaxStreamsUni)
	}
	if got.MaxIdleTimeout != p.MaxIdleTimeout {
		t.Errorf("MaxIdleTimeout = %v, want %v", got.MaxIdleTimeout, p.MaxIdleTimeout)
	}
	if got.MaxAckDelay != p.MaxAckDelay {
		t.Errorf("MaxAckDelay = %v, want %v", got.MaxAckDelay, p.MaxAckDelay)
	}
	if !got.DisableActiveMigration {
		t.Errorf("DisableActiveMigration not round-tripped")
	}
}

func TestParametersUnmarshalRejectsDuplicateTag(t *testing.T) {
	p := Parameters{InitialMaxData: 100}
	wire := p.Marshal()
	// Duplicate the whole wire form so every tag (including
	// paramInitialSourceCID, always emitted) appears twice.
	dup := append(append([]byte(nil), wire...), wire...)

	var got Parameters
	err := got.Unmarshal(dup)
	if err == nil {
		t.Fatalf("expected error for duplicate parameter tags")
	}
}

func TestParametersUnmarshalRejectsTruncatedValue(t *testing.T) {
	// header claims a 4-byte value but only 1 byte follows
	wire := []byte{0x00, paramInitialMaxData, 0x00, 0x04, 0xff}

	var got Parameters
	if err := got.Unmarshal(wire); err == nil {
		t.Fatalf("expected error for truncated parameter value")
	}
}

func TestParametersUnknownTagIgnored(t *testing.T) {
	wire := []byte{0x7f, 0xff, 0x00, 0x02, 0xaa, 0xbb}
	var got Parameters
	if err := got.Unmarshal(wire); err != nil {
		t.Fatalf("unknown tag should be ignored, got error: %v", err)
	}
}
