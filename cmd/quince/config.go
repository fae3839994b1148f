package main

import (
	"crypto/tls"
	"time"

	"github.com/corequic/quic"
	"github.com/corequic/quic/transport"
)

// newConfig returns the default endpoint configuration both the client
// and server commands start from, before the caller overrides anything
// command-line specific (TLS server name, skip-verify, certificate).
func newConfig() *quic.Config {
	return &quic.Config{
		TLS: &tls.Config{
			NextProtos: []string{"quince"},
			MinVersion: tls.VersionTLS13,
		},
		Params: transport.Parameters{
			InitialMaxData:                 16 << 20,
			InitialMaxStreamDataBidiLocal:  1 << 20,
			InitialMaxStreamDataBidiRemote: 1 << 20,
			InitialMaxStreamDataUni:        1 << 20,
			InitialMaxStreamsBidi:          100,
			InitialMaxStreamsUni:           100,
			MaxUDPPayloadSize:              transport.MaxPacketSize,
			AckDelayExponent:               3,
			MaxAckDelay:                    25 * time.Millisecond,
		},
		MaxIdleTimeout:   30 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}
