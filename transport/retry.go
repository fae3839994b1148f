package transport

import (
	"crypto/aes"
	"crypto/cipher"
)

// Retry integrity key/nonce (RFC 9001 §5.8), fixed for QUIC version 1.
var (
	retryIntegrityKey   = []byte{0xbe, 0x0c, 0x69, 0x0b, 0x9f, 0x66, 0x57, 0x5a, 0x1d, 0x76, 0x6b, 0x54, 0xe3, 0x68, 0xc8, 0x4e}
	retryIntegrityNonce = []byte{0x46, 0x15, 0x99, 0xd3, 0x5d, 0x63, 0x2b, 0xf2, 0x23, 0x98, 0x25, 0xbb}
)

const retryIntegrityTagLen = 16

// verifyRetryIntegrity authenticates a Retry packet's trailing 16-byte
// integrity tag (RFC 9001 §5.8), given the original destination
// connection ID the client sent in its first Initial packet.
func verifyRetryIntegrity(b []byte, odcid []byte) bool {
	if len(b) < retryIntegrityTagLen {
		return false
	}
	tag := b[len(b)-retryIntegrityTagLen:]
	header := b[:len(b)-retryIntegrityTagLen]

	pseudo := make([]byte, 0, 1+len(odcid)+len(header))
	pseudo = append(pseudo, byte(len(odcid)))
	pseudo = append(pseudo, odcid...)
	pseudo = append(pseudo, header...)

	block, err := aes.NewCipher(retryIntegrityKey)
	if err != nil {
		return false
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return false
	}
	_, err = aead.Open(nil, retryIntegrityNonce, tag, pseudo)
	return err == nil
}
