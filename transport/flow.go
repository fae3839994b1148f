package transport

// flowControl is the per-connection or per-stream flow-control ledger
// (spec.md §3 "Flow-control ledger"). The same type serves both levels:
// the connection uses it for data_sent/data_received against
// max_data_local/max_data_remote, and each Stream embeds one for its own
// max_stream_data accounting.
type flowControl struct {
	maxRecv     uint64 // max_data_local: how much we allow the peer to send us
	maxRecvNext uint64 // pending raise, committed once a MAX_DATA/MAX_STREAM_DATA is sent
	recvWindow  uint64 // auto-tune step used when raising maxRecvNext
	received    uint64 // data_received

	maxSend uint64 // max_data_remote: how much the peer allows us to send
	sent    uint64 // data_sent
}

func (f *flowControl) init(maxRecv, maxSend uint64) {
	f.maxRecv = maxRecv
	f.maxRecvNext = maxRecv
	f.recvWindow = maxRecv
	f.maxSend = maxSend
}

// canRecv returns how many more bytes the peer may legally send us before
// violating max_data_local.
func (f *flowControl) canRecv() uint64 {
	if f.maxRecv < f.received {
		return 0
	}
	return f.maxRecv - f.received
}

// addRecv records newly received bytes. Callers must have already checked
// canRecv() >= n (spec.md §4.5 STREAM/4.5 in-connection check).
func (f *flowControl) addRecv(n int) {
	f.received += uint64(n)
}

// canSend returns how many more bytes we may legally send before violating
// max_data_remote.
func (f *flowControl) canSend() uint64 {
	if f.maxSend < f.sent {
		return 0
	}
	return f.maxSend - f.sent
}

func (f *flowControl) addSend(n int) {
	f.sent += uint64(n)
}

// setMaxSend raises max_data_remote on receipt of a MAX_DATA/MAX_STREAM_DATA
// frame. Per spec.md §4.5, lower values are ignored, never an error.
func (f *flowControl) setMaxSend(max uint64) {
	if max > f.maxSend {
		f.maxSend = max
	}
}

// shouldUpdateMaxRecv reports whether the receive window has been
// sufficiently consumed to justify sending a new MAX_DATA/MAX_STREAM_DATA.
func (f *flowControl) shouldUpdateMaxRecv() bool {
	if f.recvWindow == 0 {
		return false
	}
	consumed := f.received - (f.maxRecv - f.recvWindow)
	return consumed*2 >= f.recvWindow
}

// commitMaxRecv advances max_data_local to the next window after a
// MAX_DATA/MAX_STREAM_DATA frame carrying maxRecvNext has been sent.
func (f *flowControl) commitMaxRecv() {
	f.maxRecv = f.received + f.recvWindow
	f.maxRecvNext = f.maxRecv
}
