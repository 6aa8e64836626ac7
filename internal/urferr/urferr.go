// Package urferr defines the typed error kinds of spec.md §7's error table.
package urferr

import "errors"

// Sentinel errors for the error kinds of a session. The structural failures
// terminate a session with a nonzero exit code. Per-datagram recoverable
// conditions (Malformed, DuplicatePacket, InvalidSeq) are handled inline by
// the caller and never end a session; ErrMalformed is what the wire decoders
// return for such a datagram, and DuplicatePacket has no sentinel.
var (
	// ErrHeaderTimeout is returned when the header handshake exhausts its retries.
	ErrHeaderTimeout = errors.New("urft: header handshake timed out")

	// ErrPacketExhausted is returned when a single sequence number exceeds its retry budget.
	ErrPacketExhausted = errors.New("urft: packet exceeded maximum retransmissions")

	// ErrTransferDeadline is returned when the session wall-clock budget is exceeded.
	ErrTransferDeadline = errors.New("urft: transfer exceeded the wall-time deadline")

	// ErrReceiverTimeout is returned when the receiver sees no datagrams for the quiescent period.
	ErrReceiverTimeout = errors.New("urft: receiver timed out waiting for data")

	// ErrIntegrityFailure is returned when the assembled file fails digest or size verification.
	ErrIntegrityFailure = errors.New("urft: integrity verification failed")

	// ErrMalformed marks a datagram that failed to decode; the caller drops it and does not ACK.
	ErrMalformed = errors.New("urft: malformed datagram")

	// ErrInvalidSeq marks seq >= total or an unrecoverable total field; the caller drops without ACK.
	ErrInvalidSeq = errors.New("urft: invalid sequence number")

	// ErrPeerReset marks a platform-reported connection reset from the peer.
	ErrPeerReset = errors.New("urft: connection reset by peer")
)
