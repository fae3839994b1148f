package quic

import (
	"crypto/tls"
	"time"

	"github.com/corequic/quic/transport"
)

// Config is the user-facing setup for a Client or Server: the TLS
// configuration handed to the handshake oracle, the transport parameters
// to advertise, and endpoint-level policy (spec.md §4 "ambient stack":
// idle timeout, handshake deadline).
type Config struct {
	TLS    *tls.Config
	Params transport.Parameters

	// MaxIdleTimeout closes a connection that exchanges no packets for
	// this long. Zero disables the idle timeout.
	MaxIdleTimeout time.Duration
	// HandshakeTimeout is carried in the Config, but the endpoint does not
	// read it: no deadline is enforced on an unestablished Accept/Connect.
	HandshakeTimeout time.Duration
}

// newConfig returns a Config with the defaults the CLI commands start
// from, matching the transport parameter defaults a production deployment
// would pick (spec.md §3 "Transport parameters" typical values).
func newConfig() *Config {
	return &Config{
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

func (c *Config) transportConfig(version uint32) *transport.Config {
	params := c.Params
	params.MaxIdleTimeout = c.MaxIdleTimeout
	return &transport.Config{
		Version: version,
		Params:  params,
		TLS:     c.TLS,
	}
}
