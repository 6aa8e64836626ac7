// Package wire implements URFT's on-the-wire framing: the data packet
// header, the ACK packet, and the textual file-metadata header line.
package wire

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/urft/urft/internal/urferr"
)

const (
	// ChunkSize is the maximum payload length of a single data packet.
	ChunkSize = 1024

	// DatagramSizeLimit is the maximum size of any datagram this protocol sends.
	DatagramSizeLimit = 4096

	// DataHeaderSize is the size in bytes of the seq|total header preceding a data packet's payload.
	DataHeaderSize = 8

	// AckSize is the size in bytes of an ACK packet.
	AckSize = 4
)

// Control word literals exchanged outside the data/ACK framing.
const (
	HeaderAck = "HEADER_ACK"
	RTTProbe  = "RTT_PROBE"
	RTTAck    = "RTT_ACK"
)

// DataPacket is the decoded form of a data (or termination marker) datagram.
type DataPacket struct {
	Seq     uint32
	Total   uint32
	Payload []byte
}

// IsTermination reports whether this packet is the termination marker:
// seq == total and an empty payload.
func (p DataPacket) IsTermination() bool {
	return p.Seq == p.Total && len(p.Payload) == 0
}

// EncodeData serializes a data packet: big-endian seq, big-endian total,
// then the raw payload bytes.
func EncodeData(seq, total uint32, payload []byte) []byte {
	buf := make([]byte, DataHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], seq)
	binary.BigEndian.PutUint32(buf[4:8], total)
	copy(buf[8:], payload)
	return buf
}

// DecodeData parses a data packet. It fails with urferr.ErrMalformed if the
// datagram is shorter than the fixed header.
func DecodeData(data []byte) (DataPacket, error) {
	if len(data) < DataHeaderSize {
		return DataPacket{}, fmt.Errorf("%w: data packet too small (%d bytes)", urferr.ErrMalformed, len(data))
	}
	seq := binary.BigEndian.Uint32(data[0:4])
	total := binary.BigEndian.Uint32(data[4:8])
	var payload []byte
	if len(data) > DataHeaderSize {
		payload = make([]byte, len(data)-DataHeaderSize)
		copy(payload, data[DataHeaderSize:])
	}
	return DataPacket{Seq: seq, Total: total, Payload: payload}, nil
}

// EncodeACK serializes an ACK packet: a single big-endian sequence number.
func EncodeACK(seq uint32) []byte {
	buf := make([]byte, AckSize)
	binary.BigEndian.PutUint32(buf, seq)
	return buf
}

// DecodeACK parses an ACK packet, failing with urferr.ErrMalformed if it is
// not exactly 4 bytes.
func DecodeACK(data []byte) (uint32, error) {
	if len(data) != AckSize {
		return 0, fmt.Errorf("%w: ACK packet must be %d bytes, got %d", urferr.ErrMalformed, AckSize, len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

// FileHeader is the decoded textual `name:size:hexdigest` handshake line.
// Digest is empty when the header used the two-field backward-compatible
// form, in which case the receiver falls back to size-only verification.
type FileHeader struct {
	Name   string
	Size   uint64
	Digest string
}

// EncodeHeader serializes a FileHeader as `name:size:hexdigest`. Digest may
// be empty, in which case the trailing colon and digest are still emitted
// to keep the wire form stable for readers that split on ":".
func EncodeHeader(h FileHeader) string {
	return fmt.Sprintf("%s:%d:%s", h.Name, h.Size, h.Digest)
}

// DecodeHeader parses a `name:size[:hexdigest]` line. The first two
// colon-delimited fields are name and size, and everything after the second
// colon (if present) is the digest verbatim. A file name containing ":"
// cannot be represented: the line is split at its first colon, so such a
// header is rejected only when the text after that colon is not a number,
// and is otherwise misread.
func DecodeHeader(line string) (FileHeader, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 2 {
		return FileHeader{}, fmt.Errorf("%w: header %q has no size field", urferr.ErrMalformed, line)
	}
	name := parts[0]
	if name == "" {
		return FileHeader{}, fmt.Errorf("%w: header %q has an empty file name", urferr.ErrMalformed, line)
	}
	size, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return FileHeader{}, fmt.Errorf("%w: header %q has a non-numeric size: %v", urferr.ErrMalformed, line, err)
	}
	var digest string
	if len(parts) == 3 {
		digest = parts[2]
	}
	return FileHeader{Name: name, Size: size, Digest: digest}, nil
}
