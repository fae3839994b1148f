package transport

import (
	"testing"
	"time"
)

func TestCongestionSlowStartGrowsOnAck(t *testing.T) {
	var c congestionState
	c.init()
	start := c.congestionWindow

	sent := time.Now()
	c.onPacketSentCC(initialMaxDatagramSize)
	c.onPacketAcked(sent, initialMaxDatagramSize)

	if c.congestionWindow <= start {
		t.Fatalf("window did not grow in slow start: before=%d after=%d", start, c.congestionWindow)
	}
	if c.bytesInFlight != 0 {
		t.Fatalf("bytesInFlight = %d, want 0 after full ack", c.bytesInFlight)
	}
}

func TestCongestionEventHalvesWindow(t *testing.T) {
	var c congestionState
	c.init()
	before := c.congestionWindow

	now := time.Now()
	sentBeforeLoss := now.Add(-time.Second)
	c.onCongestionEvent(sentBeforeLoss, now)

	want := uint64(float64(before) * lossReductionFactor)
	if c.congestionWindow != want {
		t.Fatalf("window after loss = %d, want %d", c.congestionWindow, want)
	}
	if !c.inRecovery {
		t.Fatalf("expected inRecovery to be true after congestion event")
	}
}

func TestCongestionEventIgnoredWithinSameRecoveryPeriod(t *testing.T) {
	var c congestionState
	c.init()

	now := time.Now()
	c.onCongestionEvent(now.Add(-2*time.Second), now)
	afterFirst := c.congestionWindow

	// A packet sent before the recovery period started should not trigger
	// a second window reduction while already in recovery.
	c.onCongestionEvent(now.Add(-3*time.Second), now.Add(time.Millisecond))
	if c.congestionWindow != afterFirst {
		t.Fatalf("window changed on second loss within same recovery period: %d -> %d", afterFirst, c.congestionWindow)
	}
}

func TestCongestionWindowNeverBelowMinimum(t *testing.T) {
	var c congestionState
	c.init()
	now := time.Now()
	for i := 0; i < 10; i++ {
		c.inRecovery = false
		c.onCongestionEvent(now.Add(-time.Duration(i+1)*time.Second), now.Add(time.Duration(i)*time.Millisecond))
	}
	if c.congestionWindow < c.minimumWindow() {
		t.Fatalf("window %d fell below minimum %d", c.congestionWindow, c.minimumWindow())
	}
}

func TestPersistentCongestionCollapsesWindow(t *testing.T) {
	var c congestionState
	c.init()
	c.congestionWindow = 100000
	c.onPersistentCongestion()
	if c.congestionWindow != c.minimumWindow() {
		t.Fatalf("window after persistent congestion = %d, want minimum %d", c.congestionWindow, c.minimumWindow())
	}
	if c.inRecovery {
		t.Fatalf("expected inRecovery cleared after persistent congestion")
	}
}

func TestIsCongestionLimited(t *testing.T) {
	var c congestionState
	c.init()
	if c.isCongestionLimited() {
		t.Fatalf("fresh window should not be congestion limited")
	}
	c.onPacketSentCC(c.congestionWindow)
	if !c.isCongestionLimited() {
		t.Fatalf("window should be congestion limited once bytesInFlight reaches cwnd")
	}
}
