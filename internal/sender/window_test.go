package sender

import (
	"testing"
	"time"
)

func TestSendWindowAckAdvancesBase(t *testing.T) {
	w := newSendWindow()
	now := time.Now()
	w.Add(0, []byte("a"), now)
	w.Add(1, []byte("b"), now)
	w.Add(2, []byte("c"), now)

	// Acking 2 out of order must not move base past the still-missing 0.
	if !w.Ack(2, 3) {
		t.Fatal("Ack(2) = false, want true (2 was in flight)")
	}
	if w.Base() != 0 {
		t.Errorf("Base() = %d, want 0 (0 still unacked)", w.Base())
	}

	// Acking 0 then 1 should drain the now-contiguous run, landing base at 3.
	w.Ack(0, 3)
	if w.Base() != 1 {
		t.Errorf("Base() = %d, want 1 after acking 0", w.Base())
	}
	w.Ack(1, 3)
	if w.Base() != 3 {
		t.Errorf("Base() = %d, want 3 after acking 0 and 1", w.Base())
	}
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0 once every packet is acked", w.Len())
	}
}

func TestSendWindowAckUnknownSeqIsNoop(t *testing.T) {
	w := newSendWindow()
	w.Add(0, []byte("a"), time.Now())

	if w.Ack(5, 10) {
		t.Error("Ack(5) = true, want false: 5 was never added")
	}
	if w.Base() != 0 {
		t.Errorf("Base() = %d, want 0 (unknown ACK must not advance it)", w.Base())
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (entry for 0 untouched)", w.Len())
	}
}

func TestSendWindowLenTracksInFlight(t *testing.T) {
	w := newSendWindow()
	now := time.Now()
	for seq := uint32(0); seq < 5; seq++ {
		w.Add(seq, []byte{byte(seq)}, now)
	}
	if w.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", w.Len())
	}
	w.Ack(3, 5)
	if w.Len() != 4 {
		t.Errorf("Len() = %d, want 4 after one ack", w.Len())
	}
	if _, inFlight := w.InFlight()[3]; inFlight {
		t.Error("seq 3 still present in InFlight() after being acked")
	}
}
