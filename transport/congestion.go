package transport

import "time"

// NewReno congestion control, per RFC 9002 §7. Congestion state
// (cwnd/bytesInFlight) is connection-global, not tracked per
// packet-number space: loss and ack signals from any space shrink or grow
// the same window (spec.md §9 Open Question resolution — see DESIGN.md).
const (
	initialWindowPackets              = 10
	initialMaxDatagramSize            = 1200
	minimumWindowPackets              = 2
	lossReductionFactor               = 0.5
	persistentCongestionThresholdPTOs = 3
)

type congestionState struct {
	congestionWindow  uint64
	bytesInFlight     uint64
	ssthresh          uint64
	inRecovery        bool
	recoveryStartTime time.Time
}

func (c *congestionState) init() {
	c.congestionWindow = initialWindowPackets * initialMaxDatagramSize
	c.ssthresh = ^uint64(0)
}

func (c *congestionState) minimumWindow() uint64 {
	return minimumWindowPackets * initialMaxDatagramSize
}

// onPacketSentCC accounts newly in-flight bytes.
func (c *congestionState) onPacketSentCC(size uint64) {
	c.bytesInFlight += size
}

// isCongestionLimited reports whether bytesInFlight has reached the
// window, i.e. the sender cannot send more right now.
func (c *congestionState) isCongestionLimited() bool {
	return c.bytesInFlight >= c.congestionWindow
}

// onPacketAcked grows the window: slow start below ssthresh (by the acked
// byte count), additive increase above it (RFC 9002 §7.3).
func (c *congestionState) onPacketAcked(sentTime time.Time, size uint64) {
	c.removeFromFlight(size)
	if c.inRecoveryAt(sentTime) {
		return
	}
	if c.congestionWindow < c.ssthresh {
		c.congestionWindow += size
		return
	}
	c.congestionWindow += initialMaxDatagramSize * size / c.congestionWindow
}

func (c *congestionState) inRecoveryAt(sentTime time.Time) bool {
	return c.inRecovery && !sentTime.After(c.recoveryStartTime)
}

// onCongestionEvent halves the window (floored at the minimum) the first
// time a loss is detected within the current recovery period.
func (c *congestionState) onCongestionEvent(sentTime, now time.Time) {
	if c.inRecoveryAt(sentTime) {
		return
	}
	c.inRecovery = true
	c.recoveryStartTime = now
	c.congestionWindow = uint64(float64(c.congestionWindow) * lossReductionFactor)
	if c.congestionWindow < c.minimumWindow() {
		c.congestionWindow = c.minimumWindow()
	}
	c.ssthresh = c.congestionWindow
}

// onPersistentCongestion collapses the window to the minimum, per RFC 9002
// §7.6, when a loss period has spanned several PTOs without any
// acknowledgement.
func (c *congestionState) onPersistentCongestion() {
	c.congestionWindow = c.minimumWindow()
	c.inRecovery = false
}

// removeFromFlight accounts bytes of an acked or lost packet as no longer
// in flight, without touching the window (onCongestionEvent's job).
func (c *congestionState) removeFromFlight(size uint64) {
	if c.bytesInFlight >= size {
		c.bytesInFlight -= size
	} else {
		c.bytesInFlight = 0
	}
}
