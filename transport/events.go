package transport

import "strconv"

// EventType identifies the kind of application-visible Event a Conn
// raises. The quic package extends this type with its own connection-
// lifecycle values (accept/close) so callers can switch over both in one
// place.
type EventType int

const (
	EventNone EventType = iota
	// EventStream signals that a stream has newly-readable data.
	EventStream
	// EventStreamComplete signals that all data written to a local stream
	// has been acknowledged.
	EventStreamComplete
	// EventStreamReset signals a RESET_STREAM received from the peer.
	EventStreamReset
	// EventStreamStop signals a STOP_SENDING received from the peer.
	EventStreamStop
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventStream:
		return "stream"
	case EventStreamComplete:
		return "stream_complete"
	case EventStreamReset:
		return "stream_reset"
	case EventStreamStop:
		return "stream_stop"
	default:
		// Values >= 100 belong to extensions such as the quic package's
		// connection-lifecycle events; print numerically rather than
		// claiming "none".
		return "event(" + strconv.Itoa(int(t)) + ")"
	}
}

// Event is an application-facing notification produced while processing
// received packets (spec.md §4 "events the application reads back").
type Event struct {
	Type      EventType
	StreamID  uint64
	ErrorCode uint64
}

func newStreamRecvEvent(streamID uint64) Event {
	return Event{Type: EventStream, StreamID: streamID}
}

func newStreamCompleteEvent(streamID uint64) Event {
	return Event{Type: EventStreamComplete, StreamID: streamID}
}

func newStreamResetEvent(streamID, errorCode uint64) Event {
	return Event{Type: EventStreamReset, StreamID: streamID, ErrorCode: errorCode}
}

func newStreamStopEvent(streamID, errorCode uint64) Event {
	return Event{Type: EventStreamStop, StreamID: streamID, ErrorCode: errorCode}
}
