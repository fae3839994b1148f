package transport

import "time"

const (
	packetThreshold = 3
	timeThresholdNumerator   = 9
	timeThresholdDenominator = 8
	granularity     = time.Millisecond
	initialRTT      = 333 * time.Millisecond
	defaultInitialMaxAckDelay = 25 * time.Millisecond
)

// outgoingPacket describes a packet being assembled for sending, before it
// is handed to lossRecovery's ledger (spec.md §4.6 "in-flight ledger").
type outgoingPacket struct {
	packetNumber uint64
	timeSent     time.Time
	size         uint64
	ackEliciting bool
	inFlight     bool
	frames       []frame
}

func newOutgoingPacket(pn uint64, now time.Time) *outgoingPacket {
	return &outgoingPacket{packetNumber: pn, timeSent: now}
}

// addFrame records a frame as part of this packet, and updates the
// packet's ack-eliciting/in-flight classification (RFC 9002 §2: a packet
// containing only ACK, CONNECTION_CLOSE and/or PADDING frames is not
// ack-eliciting; one containing only ACK and/or CONNECTION_CLOSE frames is
// not in flight for congestion purposes, while PADDING counts as in flight).
func (p *outgoingPacket) addFrame(f frame) {
	p.frames = append(p.frames, f)
	switch f.(type) {
	case *ackFrame:
	case *connectionCloseFrame:
	case *paddingFrame:
		p.inFlight = true
	default:
		p.ackEliciting = true
		p.inFlight = true
	}
}

func (p *outgoingPacket) String() string {
	return sprint("pn=", p.packetNumber, " size=", p.size, " frames=", len(p.frames))
}

// sentPacketRecord is one in-flight ledger entry.
type sentPacketRecord struct {
	packetNumber uint64
	timeSent     time.Time
	size         uint64
	ackEliciting bool
	inFlight     bool
	frames       []frame
}

// lossRecovery implements RFC 9002 loss detection (packet- and
// time-threshold) and owns the NewReno congestion controller. One
// instance serves all three packet-number spaces; RTT estimation and the
// congestion window are connection-global. The recovery period is global
// too: congestionState keeps one recoveryStartTime shared by all spaces,
// and a loss in any space starts a new period only if the lost packet was
// sent after that time; there is no per-space end-of-recovery marker.
type lossRecovery struct {
	cc congestionState

	sent        [packetSpaceCount][]sentPacketRecord
	lost        [packetSpaceCount][]frame
	ackedFrames [packetSpaceCount][]frame

	largestAckedPacket [packetSpaceCount]uint64
	hasLargestAcked    [packetSpaceCount]bool

	minRTT         time.Duration
	smoothedRTT    time.Duration
	rttVar         time.Duration
	firstRTTSample bool
	maxAckDelay    time.Duration

	probes   int
	ptoCount int

	lossDetectionTimer time.Time
}

func (r *lossRecovery) init(now time.Time) {
	r.cc.init()
	r.maxAckDelay = defaultInitialMaxAckDelay
}

// onPacketSent appends op to the space's ledger and arms/extends the loss
// detection timer.
func (r *lossRecovery) onPacketSent(op *outgoingPacket, space packetSpace) {
	r.sent[space] = append(r.sent[space], sentPacketRecord{
		packetNumber: op.packetNumber,
		timeSent:     op.timeSent,
		size:         op.size,
		ackEliciting: op.ackEliciting,
		inFlight:     op.inFlight,
		frames:       op.frames,
	})
	if op.inFlight {
		r.cc.onPacketSentCC(op.size)
	}
	r.setLossDetectionTimer(op.timeSent)
}

// onAckReceived updates the in-flight ledger and congestion/RTT state for
// newly-acknowledged packets in space, and runs loss detection
// immediately afterward (RFC 9002 §6.1 runs loss detection right after
// processing an ACK).
func (r *lossRecovery) onAckReceived(acked *rangeSet, ackDelay time.Duration, space packetSpace, now time.Time) {
	if acked == nil || acked.empty() {
		return
	}
	largest, _ := acked.largest()
	if !r.hasLargestAcked[space] || largest > r.largestAckedPacket[space] {
		r.largestAckedPacket[space] = largest
		r.hasLargestAcked[space] = true
	}
	var remaining []sentPacketRecord
	var sampledRTT time.Duration
	haveSample := false
	for _, p := range r.sent[space] {
		if !acked.contains(p.packetNumber) {
			remaining = append(remaining, p)
			continue
		}
		if p.inFlight {
			r.cc.onPacketAcked(p.timeSent, p.size)
		}
		r.ackedFrames[space] = append(r.ackedFrames[space], p.frames...)
		if p.packetNumber == largest && p.ackEliciting {
			sampledRTT = now.Sub(p.timeSent)
			haveSample = true
		}
	}
	r.sent[space] = remaining
	if haveSample {
		r.updateRTT(sampledRTT, ackDelay, space)
	}
	r.detectAndRemoveLostPackets(space, now)
	r.ptoCount = 0
	r.probes = 0
	r.setLossDetectionTimer(now)
}

func (r *lossRecovery) updateRTT(latestRTT, ackDelay time.Duration, space packetSpace) {
	if !r.firstRTTSample {
		r.minRTT = latestRTT
		r.smoothedRTT = latestRTT
		r.rttVar = latestRTT / 2
		r.firstRTTSample = true
		return
	}
	if latestRTT < r.minRTT {
		r.minRTT = latestRTT
	}
	adjusted := latestRTT
	if space == packetSpaceApplication {
		d := ackDelay
		if r.maxAckDelay > 0 && d > r.maxAckDelay {
			d = r.maxAckDelay
		}
		if adjusted >= r.minRTT+d {
			adjusted -= d
		}
	}
	diff := r.smoothedRTT - adjusted
	if diff < 0 {
		diff = -diff
	}
	r.rttVar = (3*r.rttVar + diff) / 4
	r.smoothedRTT = (7*r.smoothedRTT + adjusted) / 8
}

// detectAndRemoveLostPackets moves packets older than the loss-time
// threshold, or too far behind the largest acknowledged packet number,
// from the in-flight ledger to the lost-frames queue (RFC 9002 §6.1).
func (r *lossRecovery) detectAndRemoveLostPackets(space packetSpace, now time.Time) {
	if !r.hasLargestAcked[space] {
		return
	}
	largestAcked := r.largestAckedPacket[space]
	lossDelay := r.smoothedRTT
	if r.minRTT > lossDelay {
		lossDelay = r.minRTT
	}
	lossDelay = lossDelay * timeThresholdNumerator / timeThresholdDenominator
	if lossDelay < granularity {
		lossDelay = granularity
	}
	lostSendTime := now.Add(-lossDelay)

	var remaining []sentPacketRecord
	var oldestLost time.Time
	anyLost := false
	for _, p := range r.sent[space] {
		if p.packetNumber > largestAcked {
			remaining = append(remaining, p)
			continue
		}
		lost := p.timeSent.Before(lostSendTime) || largestAcked >= p.packetNumber+packetThreshold
		if !lost {
			remaining = append(remaining, p)
			continue
		}
		if p.inFlight {
			r.cc.onCongestionEvent(p.timeSent, now)
			r.cc.removeFromFlight(p.size)
		}
		r.lost[space] = append(r.lost[space], p.frames...)
		if !anyLost || p.timeSent.Before(oldestLost) {
			oldestLost = p.timeSent
		}
		anyLost = true
	}
	r.sent[space] = remaining
	if anyLost && r.ptoCount >= persistentCongestionThresholdPTOs && now.Sub(oldestLost) > r.probeTimeout()*persistentCongestionThresholdPTOs {
		r.cc.onPersistentCongestion()
	}
}

// probeTimeout is the current PTO interval (RFC 9002 §6.2.1), doubling
// with each consecutive unacknowledged probe.
func (r *lossRecovery) probeTimeout() time.Duration {
	smoothed := r.smoothedRTT
	rttVar := r.rttVar
	if !r.firstRTTSample {
		smoothed = initialRTT
		rttVar = initialRTT / 2
	}
	pto := smoothed + maxDuration(4*rttVar, granularity) + r.maxAckDelay
	return pto << uint(r.ptoCount)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// setLossDetectionTimer arms the loss detection timer to the next PTO
// expiry if anything is in flight, or disarms it otherwise.
func (r *lossRecovery) setLossDetectionTimer(now time.Time) {
	hasInFlight := false
	for sp := packetSpaceInitial; sp < packetSpaceCount; sp++ {
		for _, p := range r.sent[sp] {
			if p.inFlight {
				hasInFlight = true
				break
			}
		}
	}
	if !hasInFlight {
		r.lossDetectionTimer = time.Time{}
		return
	}
	r.lossDetectionTimer = now.Add(r.probeTimeout())
}

// onLossDetectionTimeout fires when Timeout()'s caller observes the loss
// detection timer has expired: it runs loss detection in every space with
// packets outstanding, then schedules a probe (RFC 9002 §6.2: a PTO sends
// up to two ack-eliciting probe packets).
func (r *lossRecovery) onLossDetectionTimeout(now time.Time) {
	if r.lossDetectionTimer.IsZero() || now.Before(r.lossDetectionTimer) {
		return
	}
	for sp := packetSpaceInitial; sp < packetSpaceCount; sp++ {
		if len(r.sent[sp]) > 0 {
			r.detectAndRemoveLostPackets(sp, now)
		}
	}
	r.ptoCount++
	r.probes = 2
	r.setLossDetectionTimer(now)
}

// drainAcked invokes fn for every frame belonging to a packet acknowledged
// since the last drain, then clears the queue.
func (r *lossRecovery) drainAcked(space packetSpace, fn func(frame)) {
	for _, f := range r.ackedFrames[space] {
		fn(f)
	}
	r.ackedFrames[space] = r.ackedFrames[space][:0]
}

// drainLost invokes fn for every frame belonging to a packet declared lost
// since the last drain, then clears the queue.
func (r *lossRecovery) drainLost(space packetSpace, fn func(frame)) {
	for _, f := range r.lost[space] {
		fn(f)
	}
	r.lost[space] = r.lost[space][:0]
}

// dropUnackedData discards a space's in-flight ledger entirely, e.g. when
// its keys are discarded (RFC 9001 §4.9).
func (r *lossRecovery) dropUnackedData(space packetSpace) {
	for _, p := range r.sent[space] {
		if p.inFlight {
			r.cc.removeFromFlight(p.size)
		}
	}
	r.sent[space] = nil
	r.lost[space] = nil
	r.ackedFrames[space] = nil
	r.hasLargestAcked[space] = false
	r.largestAckedPacket[space] = 0
}
