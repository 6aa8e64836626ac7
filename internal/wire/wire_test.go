package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/urft/urft/internal/urferr"
)

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	cases := []struct {
		seq, total uint32
		payload    []byte
	}{
		{0, 10, []byte("hello")},
		{9, 10, nil},
		{10, 10, nil}, // termination marker
		{0, 0, nil},   // zero-byte file session
	}

	for _, c := range cases {
		encoded := EncodeData(c.seq, c.total, c.payload)
		decoded, err := DecodeData(encoded)
		if err != nil {
			t.Fatalf("DecodeData(EncodeData(%d, %d, %v)) failed: %v", c.seq, c.total, c.payload, err)
		}
		if decoded.Seq != c.seq || decoded.Total != c.total {
			t.Fatalf("round trip mismatch: got seq=%d total=%d, want seq=%d total=%d",
				decoded.Seq, decoded.Total, c.seq, c.total)
		}
		if !bytes.Equal(decoded.Payload, c.payload) && !(len(decoded.Payload) == 0 && len(c.payload) == 0) {
			t.Fatalf("payload mismatch: got %v, want %v", decoded.Payload, c.payload)
		}
	}
}

func TestDecodeDataMalformed(t *testing.T) {
	_, err := DecodeData([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error decoding a too-short datagram")
	}
	if !strings.Contains(err.Error(), "too small") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTerminationMarker(t *testing.T) {
	p, err := DecodeData(EncodeData(42, 42, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsTermination() {
		t.Fatal("expected seq==total with empty payload to be a termination marker")
	}
}

func TestEncodeDecodeACKRoundTrip(t *testing.T) {
	for _, seq := range []uint32{0, 1, 4294967295} {
		got, err := DecodeACK(EncodeACK(seq))
		if err != nil {
			t.Fatalf("DecodeACK(EncodeACK(%d)) failed: %v", seq, err)
		}
		if got != seq {
			t.Fatalf("got %d, want %d", got, seq)
		}
	}
}

func TestDecodeACKWrongSize(t *testing.T) {
	if _, err := DecodeACK([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for a 3-byte ACK")
	}
}

func TestHeaderRoundTripWithDigest(t *testing.T) {
	h := FileHeader{Name: "report.pdf", Size: 123456, Digest: "deadbeef"}
	decoded, err := DecodeHeader(EncodeHeader(h))
	if err != nil {
		t.Fatal(err)
	}
	if decoded != h {
		t.Fatalf("got %+v, want %+v", decoded, h)
	}
}

func TestHeaderBackwardCompatibleNoDigest(t *testing.T) {
	decoded, err := DecodeHeader("report.pdf:123456")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Digest != "" {
		t.Fatalf("expected empty digest for a two-field header, got %q", decoded.Digest)
	}
	if decoded.Name != "report.pdf" || decoded.Size != 123456 {
		t.Fatalf("got %+v", decoded)
	}
}

func TestHeaderMalformed(t *testing.T) {
	cases := []string{"", "onlyname", ":123:abc", "name:notanumber:abc"}
	for _, c := range cases {
		if _, err := DecodeHeader(c); err == nil {
			t.Fatalf("expected error decoding %q", c)
		} else if !errors.Is(err, urferr.ErrMalformed) {
			t.Fatalf("expected a Malformed error for %q, got %v", c, err)
		}
	}
}
