package transport

import "crypto/tls"

// Config bundles the inputs a Conn needs to start a handshake (spec.md §4
// "Config" ambient type): the negotiated version, the local transport
// parameters to advertise, and the TLS configuration handed to the
// handshake oracle.
type Config struct {
	Version uint32
	Params  Parameters
	TLS     *tls.Config
}
