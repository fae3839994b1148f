package transport

// Version1 is the QUIC version this module speaks (RFC 9000 wire version
// and RFC 9000 frame/packet-type numbering).
const Version1 uint32 = 0x00000001

// MaxCIDLength is the maximum length of a connection ID, in bytes.
const MaxCIDLength = 20

// MinInitialPacketSize is the minimum size of a client's first Initial
// packet (padded datagram), per the amplification-limit rule.
const MinInitialPacketSize = 1200

// MaxPacketSize is the largest UDP payload this module will ever send.
const MaxPacketSize = 1452

const minPayloadLength = 4 // smallest payload that still room for a PN sample

func versionSupported(v uint32) bool {
	return v == Version1
}
