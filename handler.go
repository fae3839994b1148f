package quic

import "github.com/corequic/quic/transport"

// Handler processes the events a connection accumulates between reads, as
// called by the endpoint's dispatch loop (spec.md §4 "application
// callback").
type Handler interface {
	Serve(c Conn, events []transport.Event)
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc func(c Conn, events []transport.Event)

func (f HandlerFunc) Serve(c Conn, events []transport.Event) {
	f(c, events)
}
