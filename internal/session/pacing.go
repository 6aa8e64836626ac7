package session

import (
	"math"
	"time"
)

// progress computes the (elapsedPct, remainingPct, progressPct, deficit)
// quadruple spec.md §4.2's streaming pacing section defines. total == 0
// (only possible on a zero-byte file, which never streams) is guarded to
// avoid a division by zero by reporting full progress.
func progress(elapsed time.Duration, base, total uint32) (elapsedPct, remainingPct, progressPct, deficit float64) {
	elapsedPct = 100 * elapsed.Seconds() / MaxTransferTime.Seconds()
	remainingPct = 100 - elapsedPct
	if total == 0 {
		progressPct = 100
	} else {
		progressPct = 100 * float64(base) / float64(total)
	}
	deficit = elapsedPct - progressPct
	return
}

// Progress exposes the (elapsedPct, remainingPct, progressPct, deficit)
// quadruple to callers outside this package, such as the sender's
// opportunistic extra-send-on-ACK logic.
func Progress(elapsed time.Duration, base, total uint32) (elapsedPct, remainingPct, progressPct, deficit float64) {
	return progress(elapsed, base, total)
}

// BurstCap computes the maximum number of new packets the sender may send
// within one outer streaming iteration, per spec.md §4.2's burst-cap table.
func BurstCap(m Mode, elapsed time.Duration, base, total uint32) int {
	_, remainingPct, progressPct, deficit := progress(elapsed, base, total)

	var std, high int
	switch {
	case remainingPct < 20 && progressPct > 75:
		std, high = 128, 192
	case deficit > 15 || remainingPct < 30:
		std, high = 64, 96
	case deficit > 10 || remainingPct < 50:
		std, high = 32, 48
	case deficit > 5 || remainingPct < 70:
		std, high = 16, 24
	default:
		std, high = 8, 12
	}

	burst := std
	if m.HighRTT {
		burst = high
	}
	if m.ExtremeRTT {
		burst *= 2
		if remainingPct < 50 {
			burst *= 2
		}
	}
	return burst
}

// DynamicTimeout computes the per-packet retransmission timeout T(s) for a
// packet currently at retry count r, per spec.md §4.2's dynamic-timeout
// table and its remaining-time scaling policy.
func DynamicTimeout(m Mode, retry int, elapsed time.Duration, base, total uint32) time.Duration {
	var t time.Duration

	switch {
	case m.ExtremeRTT:
		switch {
		case retry == 0:
			t = m.BaseTimeout
		case retry <= 3:
			t = scaleDuration(m.BaseTimeout, math.Pow(1.1, float64(retry)))
		default:
			t = scaleDuration(m.BaseTimeout, math.Pow(1.2, float64(minInt(retry-3, 3))))
		}
	case m.HighRTT:
		switch {
		case retry == 0:
			t = m.BaseTimeout
		case retry <= 3:
			t = scaleDuration(m.BaseTimeout, math.Pow(1.2, float64(retry)))
		default:
			t = scaleDuration(m.BaseTimeout, math.Pow(1.5, float64(minInt(retry-3, 3))))
		}
	default:
		switch {
		case retry <= 1:
			t = scaleDuration(BaseTimeout, 0.8)
		case retry <= 3:
			t = BaseTimeout
		default:
			t = scaleDuration(BaseTimeout, math.Pow(1.05, float64(retry-3)))
		}
	}

	_, remainingPct, progressPct, _ := progress(elapsed, base, total)
	switch {
	case remainingPct < 20 && progressPct > 75:
		t = scaleDuration(BaseTimeout, 0.1)
	case remainingPct < 25:
		t = scaleDuration(BaseTimeout, 0.15)
	case remainingPct < 50:
		floor := scaleDuration(BaseTimeout, 0.2)
		scaled := scaleDuration(t, 0.4)
		if scaled > floor {
			t = scaled
		} else {
			t = floor
		}
	}
	return t
}

// TerminationParams returns the termination-marker repeat count and
// inter-emit delay, the ACK-wait timeout, and the inter-retry settle delay,
// per spec.md §4.2 step 5 and the receiver's matching table in §4.3.
func TerminationParams(m Mode) (repeat int, emitDelay, ackTimeout, settleDelay time.Duration) {
	switch {
	case m.ExtremeRTT:
		return 20, 50 * time.Millisecond, 5 * time.Second, 200 * time.Millisecond
	case m.HighRTT:
		return 10, 20 * time.Millisecond, 3 * time.Second, 100 * time.Millisecond
	default:
		return 3, 10 * time.Millisecond, 1 * time.Second, 0
	}
}

func scaleDuration(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
