// Package session implements the pure, table-driven parts of URFT's
// adaptation policy: session mode derivation from a measured RTT, and the
// burst-cap/dynamic-timeout/termination-parameter functions spec.md §4.2–
// §4.4 specify. None of this touches a socket — it is designed for direct
// table-driven testing, per spec.md §9 "Pacing policy as a pure function".
package session

import "time"

// Tuning constants shared by every mode, per spec.md §4.2 and §6.
const (
	// ChunkWindow is the base (standard-mode) send window, in packets.
	ChunkWindow = 32

	// BaseTimeout is the standard-mode base retransmission timeout.
	BaseTimeout = 200 * time.Millisecond

	// MaxTransferTime is the sender's wall-clock deadline for a whole transfer.
	MaxTransferTime = 120 * time.Second

	// MaxRetries is the retry budget for the header handshake and any single in-flight packet.
	MaxRetries = 25

	// HeaderTimeout is the base timeout for each header-handshake attempt.
	HeaderTimeout = 200 * time.Millisecond

	// RTTProbeTimeout is the per-attempt timeout for an RTT probe.
	RTTProbeTimeout = 1 * time.Second

	// RTTProbeAttempts is the number of RTT probes the sender issues before giving up on measuring RTT.
	RTTProbeAttempts = 3

	// ReceiverQuiescentTimeout is the receiver's base quiescent-period deadline
	// (doubled under high_rtt), used both for the initial header wait and the
	// streaming phase.
	ReceiverQuiescentTimeout = 120 * time.Second

	// MaxReasonablePackets bounds a sane `total` field; values above it are replaced by the size-derived estimate.
	MaxReasonablePackets = 100_000

	// PeerResetCompletionThreshold is the fraction of total_packets that must be
	// received before a platform connection-reset is treated as a completed transfer.
	PeerResetCompletionThreshold = 0.9
)

// extremeRTTThreshold and highRTTThreshold are the measured-RTT cutoffs
// spec.md §3/§4.2 define for session mode selection.
const (
	extremeRTTThreshold = 200 * time.Millisecond
	highRTTThreshold    = 100 * time.Millisecond
)

// Mode is the immutable pair of RTT-derived booleans and the window/timeout
// knobs they select, fixed for a session once the first successful RTT
// probe resolves (spec.md §3 "Session modes").
type Mode struct {
	HighRTT     bool
	ExtremeRTT  bool
	RTT         time.Duration
	Window      uint32
	BaseTimeout time.Duration
}

// DeriveMode derives the session mode from a measured RTT, per spec.md
// §4.2 step 3. rtt == 0 (no probe ever completed) selects standard mode.
func DeriveMode(rtt time.Duration) Mode {
	extreme := rtt > extremeRTTThreshold
	high := rtt > highRTTThreshold // extreme implies high

	switch {
	case extreme:
		return Mode{
			HighRTT: true, ExtremeRTT: true, RTT: rtt,
			Window:      minU32(192, ChunkWindow*6),
			BaseTimeout: maxDuration(1*time.Second, 3*rtt),
		}
	case high:
		return Mode{
			HighRTT: true, ExtremeRTT: false, RTT: rtt,
			Window:      minU32(128, ChunkWindow*4),
			BaseTimeout: maxDuration(500*time.Millisecond, 2*rtt),
		}
	default:
		return Mode{
			HighRTT: false, ExtremeRTT: false, RTT: rtt,
			Window:      ChunkWindow,
			BaseTimeout: BaseTimeout,
		}
	}
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
