package transport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// quicV1InitialSalt is the version-1 initial salt used to derive the
// Initial-level secrets from a connection ID (RFC 9001 §5.2).
var quicV1InitialSalt = []byte{
	0x38, 0x76, 0x2c, 0xf7, 0xf5, 0x59, 0x34, 0xb3, 0x4d, 0x17,
	0x9a, 0xe6, 0xa4, 0xc8, 0x0c, 0xad, 0xcc, 0xbb, 0x7f, 0x0a,
}

// packetAEAD bundles the per-direction packet-protection AEAD and header
// protection cipher for one encryption level.
type packetAEAD struct {
	aead cipher.AEAD
	iv   []byte
	hp   cipher.Block
}

// Overhead returns the AEAD expansion (tag length) added to every packet.
func (a *packetAEAD) Overhead() int {
	if a.aead == nil {
		return 0
	}
	return a.aead.Overhead()
}

// seal encrypts plaintext in place (payload only; header is AAD) for packet
// number pn and returns the ciphertext, which is plaintext's storage
// extended by Overhead() bytes.
func (a *packetAEAD) seal(pn uint64, header, plaintext []byte) []byte {
	nonce := a.nonce(pn)
	return a.aead.Seal(plaintext[:0], nonce, plaintext, header)
}

func (a *packetAEAD) open(pn uint64, header, ciphertext []byte) ([]byte, error) {
	nonce := a.nonce(pn)
	return a.aead.Open(ciphertext[:0], nonce, ciphertext, header)
}

func (a *packetAEAD) nonce(pn uint64) []byte {
	nonce := make([]byte, len(a.iv))
	copy(nonce, a.iv)
	var pnBytes [8]byte
	binary.BigEndian.PutUint64(pnBytes[:], pn)
	for i := 0; i < 8; i++ {
		nonce[len(nonce)-8+i] ^= pnBytes[i]
	}
	return nonce
}

// headerProtectionMask encrypts a 16-byte ciphertext sample with the
// header-protection key (AES-ECB single block, RFC 9001 §5.4) and returns
// the whole encrypted block; callers use its first 5 bytes as the mask.
func (a *packetAEAD) headerProtectionMask(sample []byte) []byte {
	mask := make([]byte, a.hp.BlockSize())
	a.hp.Encrypt(mask, sample)
	return mask
}

// initialAEAD derives the client and server Initial-level keys from the
// negotiated destination connection ID, per RFC 9001 §5.2. This is the
// concrete default implementation of the "AEAD facade" component (spec.md
// §4 "AEAD facade: wraps external"); later encryption levels obtain their
// secrets from the TLS handshake oracle (transport/handshake.go) instead.
type initialAEAD struct {
	client packetAEAD
	server packetAEAD
}

func (s *initialAEAD) init(dcid []byte) {
	initialSecret := hkdf.Extract(sha256.New, dcid, quicV1InitialSalt)
	clientSecret := hkdfExpandLabel(initialSecret, "client in", 32)
	serverSecret := hkdfExpandLabel(initialSecret, "server in", 32)
	s.client = deriveAEAD(clientSecret)
	s.server = deriveAEAD(serverSecret)
}

// deriveAEAD expands a level secret into an AES-128-GCM packet-protection
// AEAD plus the AES-ECB header-protection block cipher, per RFC 9001 §5.1.
func deriveAEAD(secret []byte) packetAEAD {
	key := hkdfExpandLabel(secret, "quic key", 16)
	iv := hkdfExpandLabel(secret, "quic iv", 12)
	hpKey := hkdfExpandLabel(secret, "quic hp", 16)

	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	hp, err := aes.NewCipher(hpKey)
	if err != nil {
		panic(err)
	}
	return packetAEAD{aead: aead, iv: iv, hp: hp}
}

// hkdfExpandLabel implements TLS 1.3's HKDF-Expand-Label (RFC 8446 §7.1)
// restricted to the "tls13 " label prefix and no context, which is all
// QUIC's key schedule needs.
func hkdfExpandLabel(secret []byte, label string, length int) []byte {
	fullLabel := "tls13 " + label
	info := make([]byte, 0, 2+1+len(fullLabel)+1)
	info = append(info, byte(length>>8), byte(length))
	info = append(info, byte(len(fullLabel)))
	info = append(info, fullLabel...)
	info = append(info, 0) // empty Context
	out := make([]byte, length)
	r := hkdf.Expand(sha256.New, secret, info)
	if _, err := io.ReadFull(r, out); err != nil {
		panic(err)
	}
	return out
}
