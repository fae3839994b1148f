package transport

import (
	"testing"
	"time"
)

func TestLossRecoveryAckRemovesFromLedger(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)

	op := newOutgoingPacket(1, now)
	op.size = 1200
	op.addFrame(&pingFrame{})
	r.onPacketSent(op, packetSpaceApplication)

	if len(r.sent[packetSpaceApplication]) != 1 {
		t.Fatalf("expected 1 packet in flight, got %d", len(r.sent[packetSpaceApplication]))
	}

	var acked rangeSet
	acked.insert(1)
	r.onAckReceived(&acked, 0, packetSpaceApplication, now.Add(10*time.Millisecond))

	if len(r.sent[packetSpaceApplication]) != 0 {
		t.Fatalf("expected ledger empty after ack, got %d entries", len(r.sent[packetSpaceApplication]))
	}
	if r.cc.bytesInFlight != 0 {
		t.Fatalf("bytesInFlight = %d, want 0 after full ack", r.cc.bytesInFlight)
	}
}

func TestLossRecoveryPacketThresholdDeclaresLoss(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)

	for pn := uint64(1); pn <= 5; pn++ {
		op := newOutgoingPacket(pn, now)
		op.size = 1200
		op.addFrame(&pingFrame{})
		r.onPacketSent(op, packetSpaceApplication)
	}

	// Acking packet 5 (with 1..4 still outstanding) puts packets 1 and 2 at
	// least packetThreshold (3) behind the largest acked.
	var acked rangeSet
	acked.insert(5)
	r.onAckReceived(&acked, 0, packetSpaceApplication, now.Add(time.Millisecond))

	if len(r.lost[packetSpaceApplication]) == 0 {
		t.Fatalf("expected packet 1 to be declared lost by packet-threshold rule")
	}
}

func TestLossDetectionTimerDisarmedWithNothingInFlight(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)
	r.setLossDetectionTimer(now)
	if !r.lossDetectionTimer.IsZero() {
		t.Fatalf("expected disarmed timer with nothing in flight")
	}
}

func TestLossDetectionTimerArmedWithInFlight(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)

	op := newOutgoingPacket(1, now)
	op.size = 1200
	op.addFrame(&pingFrame{})
	r.onPacketSent(op, packetSpaceInitial)

	if r.lossDetectionTimer.IsZero() {
		t.Fatalf("expected armed timer with a packet in flight")
	}
}

func TestOnLossDetectionTimeoutIncrementsPTOCount(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)

	op := newOutgoingPacket(1, now)
	op.size = 1200
	op.addFrame(&pingFrame{})
	r.onPacketSent(op, packetSpaceInitial)

	expiry := r.lossDetectionTimer
	r.onLossDetectionTimeout(expiry.Add(time.Millisecond))

	if r.ptoCount != 1 {
		t.Fatalf("ptoCount = %d, want 1", r.ptoCount)
	}
	if r.probes != 2 {
		t.Fatalf("probes = %d, want 2 (PTO sends up to two probe packets)", r.probes)
	}
}

func TestDropUnackedDataClearsSpace(t *testing.T) {
	var r lossRecovery
	now := time.Now()
	r.init(now)

	op := newOutgoingPacket(1, now)
	op.size = 1200
	op.addFrame(&cryptoFrame{})
	r.onPacketSent(op, packetSpaceInitial)

	r.dropUnackedData(packetSpaceInitial)

	if len(r.sent[packetSpaceInitial]) != 0 {
		t.Fatalf("expected sent ledger cleared for space")
	}
	if r.cc.bytesInFlight != 0 {
		t.Fatalf("bytesInFlight = %d, want 0 after dropping unacked data", r.cc.bytesInFlight)
	}
}
