package receiver

import "testing"

func TestSanitizeTotalZeroByteTransfer(t *testing.T) {
	v, ok := sanitizeTotal(0, 0)
	if !ok || v != 0 {
		t.Fatalf("zero total with zero expected = (%d, %v), want (0, true)", v, ok)
	}
}

func TestSanitizeTotalZeroSubstitutesExpected(t *testing.T) {
	v, ok := sanitizeTotal(0, 42)
	if !ok || v != 42 {
		t.Fatalf("zero total with known expected = (%d, %v), want (42, true)", v, ok)
	}
}

func TestSanitizeTotalOverLimitSubstitutesExpected(t *testing.T) {
	v, ok := sanitizeTotal(5_000_000, 42)
	if !ok || v != 42 {
		t.Fatalf("over-limit total with known expected = (%d, %v), want (42, true)", v, ok)
	}
}

func TestSanitizeTotalUnrecoverableDropped(t *testing.T) {
	_, ok := sanitizeTotal(5_000_000, 0)
	if ok {
		t.Fatalf("over-limit total with no expected should be dropped")
	}
}

func TestSanitizeTotalWithinRangePassesThrough(t *testing.T) {
	v, ok := sanitizeTotal(17, 20)
	if !ok || v != 17 {
		t.Fatalf("in-range total = (%d, %v), want (17, true)", v, ok)
	}
}
