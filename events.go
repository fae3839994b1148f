package quic

import "github.com/corequic/quic/transport"

// Connection-lifecycle events. These share transport.EventType's value
// space (starting well above transport's own stream events) so a Handler
// can switch over both a connection's lifecycle and its streams' activity
// in one statement, as cmd/quince does.
const (
	// EventConnAccept fires once when a connection becomes established,
	// client or server side.
	EventConnAccept transport.EventType = 100 + iota
	// EventConnClose fires once when a connection reaches its closed
	// state and is about to be removed from the endpoint's table.
	EventConnClose
)
