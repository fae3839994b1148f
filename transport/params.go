package transport

import (
	"encoding/binary"
	"time"
)

// Transport-parameter tags (16-bit type, spec.md §6: `type(2) | length(2) |
// value(length)`). Tags 0x0e/0x0f extend the table with the three-way
// split of connection-ID parameters (initial_source / retry_source) that
// a modern handshake needs alongside original_destination_connection_id —
// spec.md's own table only names the single, older ORIGINAL_CONNECTION_ID
// tag; see DESIGN.md for this extension.
const (
	paramInitialMaxStreamDataBidiLocal  = 0x00
	paramInitialMaxData                 = 0x01
	paramInitialMaxStreamsBidi          = 0x02
	paramIdleTimeout                    = 0x03
	paramPreferredAddress               = 0x04
	paramMaxPacketSize                  = 0x05
	paramStatelessResetToken            = 0x06
	paramAckDelayExponent               = 0x07
	paramInitialMaxStreamsUni           = 0x08
	paramDisableActiveMigration         = 0x09
	paramInitialMaxStreamDataBidiRemote = 0x0a
	paramInitialMaxStreamDataUni        = 0x0b
	paramMaxAckDelay                    = 0x0c
	paramOriginalDestinationCID         = 0x0d
	paramInitialSourceCID               = 0x0e
	paramRetrySourceCID                 = 0x0f
)

const defaultAckDelayExponent = 3

// Parameters is the set of transport parameters exchanged once during the
// handshake and immutable afterward (spec.md §3 "Transport parameters").
type Parameters struct {
	InitialSourceCID       []byte
	OriginalDestinationCID []byte
	RetrySourceCID         []byte
	StatelessResetToken    []byte

	InitialMaxData                 uint64
	InitialMaxStreamsBidi          uint64
	InitialMaxStreamsUni           uint64
	InitialMaxStreamDataBidiLocal  uint64
	InitialMaxStreamDataBidiRemote uint64
	InitialMaxStreamDataUni        uint64

	MaxIdleTimeout    time.Duration
	AckDelayExponent  uint64
	MaxAckDelay       time.Duration
	MaxUDPPayloadSize uint64

	DisableActiveMigration bool
	PreferredAddress       []byte
}

// Marshal serializes p as a sequence of tag/length/value records. The
// initial source CID, the max-data, max-streams and max-stream-data
// limits, the idle timeout and the ack delay exponent are always emitted;
// the other fields only when non-zero/non-empty (spec.md §6 invariant: no
// duplicate tag on the wire — each field is written at most once).
func (p *Parameters) Marshal() []byte {
	var b []byte
	b = appendParamVar(b, paramInitialSourceCID, p.InitialSourceCID)
	if len(p.OriginalDestinationCID) > 0 {
		b = appendParamVar(b, paramOriginalDestinationCID, p.OriginalDestinationCID)
	}
	if len(p.RetrySourceCID) > 0 {
		b = appendParamVar(b, paramRetrySourceCID, p.RetrySourceCID)
	}
	if len(p.StatelessResetToken) > 0 {
		b = appendParamVar(b, paramStatelessResetToken, p.StatelessResetToken)
	}
	b = appendParam32(b, paramInitialMaxData, uint32(p.InitialMaxData))
	b = appendParam16(b, paramInitialMaxStreamsBidi, uint16(p.InitialMaxStreamsBidi))
	b = appendParam16(b, paramInitialMaxStreamsUni, uint16(p.InitialMaxStreamsUni))
	b = appendParam32(b, paramInitialMaxStreamDataBidiLocal, uint32(p.InitialMaxStreamDataBidiLocal))
	b = appendParam32(b, paramInitialMaxStreamDataBidiRemote, uint32(p.InitialMaxStreamDataBidiRemote))
	b = appendParam32(b, paramInitialMaxStreamDataUni, uint32(p.InitialMaxStreamDataUni))
	b = appendParam16(b, paramIdleTimeout, uint16(p.MaxIdleTimeout/time.Second))
	exponent := p.AckDelayExponent
	if exponent == 0 {
		exponent = defaultAckDelayExponent
	}
	b = appendParam8(b, paramAckDelayExponent, uint8(exponent))
	if p.MaxAckDelay > 0 {
		b = appendParam8(b, paramMaxAckDelay, uint8(p.MaxAckDelay/time.Millisecond))
	}
	if p.MaxUDPPayloadSize > 0 {
		b = appendParam16(b, paramMaxPacketSize, uint16(p.MaxUDPPayloadSize))
	}
	if p.DisableActiveMigration {
		b = appendParamVar(b, paramDisableActiveMigration, nil)
	}
	if len(p.PreferredAddress) > 0 {
		b = appendParamVar(b, paramPreferredAddress, p.PreferredAddress)
	}
	return b
}

func appendParamVar(b []byte, tag uint16, value []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, tag)
	b = binary.BigEndian.AppendUint16(b, uint16(len(value)))
	return append(b, value...)
}

func appendParam8(b []byte, tag uint16, v uint8) []byte {
	return appendParamVar(b, tag, []byte{v})
}

func appendParam16(b []byte, tag uint16, v uint16) []byte {
	var value [2]byte
	binary.BigEndian.PutUint16(value[:], v)
	return appendParamVar(b, tag, value[:])
}

func appendParam32(b []byte, tag uint16, v uint32) []byte {
	var value [4]byte
	binary.BigEndian.PutUint32(value[:], v)
	return appendParamVar(b, tag, value[:])
}

// Unmarshal parses the wire representation produced by Marshal. Unknown
// tags are ignored (spec.md §6); a tag seen twice is
// TRANSPORT_PARAMETER_ERROR.
func (p *Parameters) Unmarshal(b []byte) error {
	seen := make(map[uint16]bool)
	for len(b) > 0 {
		if len(b) < 4 {
			return newError(TransportParameterError, "truncated parameter header")
		}
		tag := binary.BigEndian.Uint16(b)
		length := int(binary.BigEndian.Uint16(b[2:]))
		b = b[4:]
		if len(b) < length {
			return newError(TransportParameterError, "truncated parameter value")
		}
		value := b[:length]
		b = b[length:]
		if seen[tag] {
			return newError(TransportParameterError, "duplicate parameter")
		}
		seen[tag] = true
		if err := p.setParam(tag, value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parameters) setParam(tag uint16, value []byte) error {
	switch tag {
	case paramInitialSourceCID:
		p.InitialSourceCID = append([]byte(nil), value...)
	case paramOriginalDestinationCID:
		p.OriginalDestinationCID = append([]byte(nil), value...)
	case paramRetrySourceCID:
		p.RetrySourceCID = append([]byte(nil), value...)
	case paramStatelessResetToken:
		if len(value) != 16 {
			return newError(TransportParameterError, "stateless reset token")
		}
		p.StatelessResetToken = append([]byte(nil), value...)
	case paramInitialMaxData:
		v, err := paramUint32(value)
		if err != nil {
			return err
		}
		p.InitialMaxData = uint64(v)
	case paramInitialMaxStreamsBidi:
		v, err := paramUint16(value)
		if err != nil {
			return err
		}
		p.InitialMaxStreamsBidi = uint64(v)
	case paramInitialMaxStreamsUni:
		v, err := paramUint16(value)
		if err != nil {
			return err
		}
		p.InitialMaxStreamsUni = uint64(v)
	case paramInitialMaxStreamDataBidiLocal:
		v, err := paramUint32(value)
		if err != nil {
			return err
		}
		p.InitialMaxStreamDataBidiLocal = uint64(v)
	case paramInitialMaxStreamDataBidiRemote:
		v, err := paramUint32(value)
		if err != nil {
			return err
		}
		p.InitialMaxStreamDataBidiRemote = uint64(v)
	case paramInitialMaxStreamDataUni:
		v, err := paramUint32(value)
		if err != nil {
			return err
		}
		p.InitialMaxStreamDataUni = uint64(v)
	case paramIdleTimeout:
		v, err := paramUint16(value)
		if err != nil {
			return err
		}
		p.MaxIdleTimeout = time.Duration(v) * time.Second
	case paramAckDelayExponent:
		if len(value) != 1 {
			return newError(TransportParameterError, "ack delay exponent")
		}
		p.AckDelayExponent = uint64(value[0])
	case paramMaxAckDelay:
		if len(value) != 1 {
			return newError(TransportParameterError, "max ack delay")
		}
		p.MaxAckDelay = time.Duration(value[0]) * time.Millisecond
	case paramMaxPacketSize:
		v, err := paramUint16(value)
		if err != nil {
			return err
		}
		p.MaxUDPPayloadSize = uint64(v)
	case paramDisableActiveMigration:
		p.DisableActiveMigration = true
	case paramPreferredAddress:
		p.PreferredAddress = append([]byte(nil), value...)
	}
	return nil
}

func paramUint16(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, newError(TransportParameterError, "")
	}
	return binary.BigEndian.Uint16(b), nil
}

func paramUint32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, newError(TransportParameterError, "")
	}
	return binary.BigEndian.Uint32(b), nil
}
