package transport

import "testing"

func TestEventTypeStringKnownValues(t *testing.T) {
	cases := map[EventType]string{
		EventNone:           "none",
		EventStream:         "stream",
		EventStreamComplete: "stream_complete",
		EventStreamReset:    "stream_reset",
		EventStreamStop:     "stream_stop",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("EventType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestEventTypeStringExtensionValue(t *testing.T) {
	const connAccept EventType = 100
	if got, want := connAccept.String(), "event(100)"; got != want {
		t.Errorf("EventType(100).String() = %q, want %q", got, want)
	}
}

func TestNewStreamEvents(t *testing.T) {
	recv := newStreamRecvEvent(4)
	if recv.Type != EventStream || recv.StreamID != 4 {
		t.Errorf("newStreamRecvEvent = %+v", recv)
	}

	complete := newStreamCompleteEvent(8)
	if complete.Type != EventStreamComplete || complete.StreamID != 8 {
		t.Errorf("newStreamCompleteEvent = %+v", complete)
	}

	reset := newStreamResetEvent(12, 7)
	if reset.Type != EventStreamReset || reset.StreamID != 12 || reset.ErrorCode != 7 {
		t.Errorf("newStreamResetEvent = %+v", reset)
	}

	stop := newStreamStopEvent(16, 9)
	if stop.Type != EventStreamStop || stop.StreamID != 16 || stop.ErrorCode != 9 {
		t.Errorf("newStreamStopEvent = %+v", stop)
	}
}
