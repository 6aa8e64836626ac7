// Package receiver implements the URFT receiving side of a transfer: header
// handshake, RTT probe replies, windowed reassembly with duplicate/
// out-of-order handling, the termination handshake, and final integrity
// verification. It is generalized from the teacher's
// reliability.ReceiveBuffer (nextExpected counter plus an out-of-order
// buffer map) down to URFT's simpler duplicate/ordering rules, and from
// transport.Conn's accept loop down to a single-peer session.
package receiver

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/urft/urft/internal/chunker"
	"github.com/urft/urft/internal/digest"
	"github.com/urft/urft/internal/session"
	"github.com/urft/urft/internal/udpsocket"
	"github.com/urft/urft/internal/urferr"
	"github.com/urft/urft/internal/wire"
	"github.com/urft/urft/pkg/guuid"
)

// IntegrityMode records which check verified the received file.
type IntegrityMode int

const (
	// IntegrityDigest means the header carried an MD5 digest and it matched.
	IntegrityDigest IntegrityMode = iota
	// IntegritySizeOnly means the header had no digest field; only the byte
	// count was checked against the declared size.
	IntegritySizeOnly
)

// Result summarizes a completed receive.
type Result struct {
	FileName      string
	OutputPath    string
	BytesWritten  int64
	TotalPackets  uint32
	HighRTT       bool
	IntegrityMode IntegrityMode
}

// Receiver drives one inbound transfer over a bound, unconnected UDP socket.
type Receiver struct {
	conn   *net.UDPConn
	cfg    session.Config
	outDir string
	log    *zap.Logger
}

// New creates a Receiver bound to a listening UDP socket (net.ListenUDP).
// outDir is the directory received files are written into, named
// "received_<name>" per the original implementation's convention.
func New(conn *net.UDPConn, cfg session.Config, outDir string, log *zap.Logger) *Receiver {
	udpsocket.RaiseBuffers(conn, cfg.SocketBufferBytes, log)
	if id, err := guuid.New(); err == nil {
		log = log.With(zap.String("session_id", id.String()))
	}
	return &Receiver{conn: conn, cfg: cfg, outDir: outDir, log: log}
}

// Receive runs the full receiver state machine: await the file header, reply
// to RTT probes, reassemble the stream, and verify the result.
func (r *Receiver) Receive() (Result, error) {
	header, peer, highRTT, err := r.awaitHeader()
	if err != nil {
		return Result{}, err
	}
	r.log.Info("receiving file", zap.String("name", header.Name), zap.Uint64("size", header.Size))

	outPath := filepath.Join(r.outDir, "received_"+header.Name)
	f, err := os.Create(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("receiver: create %s: %w", outPath, err)
	}
	defer f.Close()

	sum := digest.NewIncremental()
	written, totalPackets, err := r.stream(f, sum, peer, header.Size, highRTT)
	if err != nil {
		return Result{}, err
	}

	if err := r.verify(header, written, sum.Sum()); err != nil {
		return Result{}, err
	}

	mode := IntegritySizeOnly
	if header.Digest != "" {
		mode = IntegrityDigest
	}
	return Result{
		FileName:      header.Name,
		OutputPath:    outPath,
		BytesWritten:  written,
		TotalPackets:  totalPackets,
		HighRTT:       highRTT,
		IntegrityMode: mode,
	}, nil
}

// awaitHeader waits up to the configured ReceiverQuiescentTimeout (a
// quiescent window, reset by any arriving datagram including RTT probes)
// for the textual file header, answering RTT probes along the way.
func (r *Receiver) awaitHeader() (wire.FileHeader, *net.UDPAddr, bool, error) {
	buf := make([]byte, wire.DatagramSizeLimit)
	highRTT := false

	for {
		r.conn.SetReadDeadline(time.Now().Add(r.cfg.ReceiverQuiescentTimeout))
		n, peer, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			return wire.FileHeader{}, nil, false, urferr.ErrReceiverTimeout
		}

		if string(buf[:n]) == wire.RTTProbe {
			r.conn.WriteToUDP([]byte(wire.RTTAck), peer)
			highRTT = true
			continue
		}

		header, err := wire.DecodeHeader(string(buf[:n]))
		if err != nil {
			r.log.Debug("invalid header received, ignoring", zap.Error(err))
			continue
		}
		r.conn.WriteToUDP([]byte(wire.HeaderAck), peer)
		return header, peer, highRTT, nil
	}
}

// stream reassembles the data stream into f, writing bytes in final file
// order and feeding the same order into sum for integrity verification.
func (r *Receiver) stream(f *os.File, sum *digest.Incremental, peer *net.UDPAddr, declaredSize uint64, highRTT bool) (int64, uint32, error) {
	expectedPackets := chunker.Count(declaredSize)
	quiescent := r.cfg.ReceiverQuiescentTimeout
	if highRTT {
		quiescent *= 2
	}

	buf := make([]byte, wire.DatagramSizeLimit)
	reasm := newReassembler()
	var totalPackets uint32
	var written int64
	var lastProgress float64
	lastActivity := time.Now()

	for {
		r.conn.SetReadDeadline(time.Now().Add(quiescent))
		n, from, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if isPeerReset(err) {
				if totalPackets > 0 && float64(reasm.ExpectedSeq()) >= session.PeerResetCompletionThreshold*float64(totalPackets) {
					r.log.Warn("connection reset by peer, accepting partial transfer as complete",
						zap.Uint32("received", reasm.ExpectedSeq()), zap.Uint32("total", totalPackets))
					return written, totalPackets, nil
				}
				return written, totalPackets, urferr.ErrPeerReset
			}
			if time.Since(lastActivity) > quiescent {
				return written, totalPackets, urferr.ErrReceiverTimeout
			}
			continue
		}
		lastActivity = time.Now()

		if string(buf[:n]) == wire.RTTProbe {
			r.conn.WriteToUDP([]byte(wire.RTTAck), from)
			if !highRTT {
				highRTT = true
				quiescent *= 2
			}
			continue
		}

		pkt, err := wire.DecodeData(buf[:n])
		if err != nil {
			r.log.Debug("dropping malformed datagram", zap.Error(err))
			continue
		}

		total, ok := sanitizeTotal(pkt.Total, expectedPackets)
		if !ok {
			r.log.Warn("dropping packet with unrecoverable total field", zap.Uint32("total", pkt.Total))
			continue
		}
		if totalPackets == 0 && total != 0 {
			totalPackets = total
			if expectedPackets > 0 && math.Abs(float64(totalPackets)-float64(expectedPackets)) > 0.5*float64(expectedPackets) {
				totalPackets = expectedPackets
			}
		}

		if pkt.Seq == totalPackets && pkt.Total == totalPackets {
			r.log.Info("termination packet received", zap.Uint32("total", totalPackets))
			r.ackTermination(peer, totalPackets, highRTT)
			return written, totalPackets, nil
		}

		outc, ready := reasm.accept(pkt.Seq, totalPackets, pkt.Payload)
		switch outc {
		case outcomeInvalidSeq:
			r.log.Warn("dropping invalid sequence number", zap.Uint32("seq", pkt.Seq), zap.Uint32("total", totalPackets))
			continue
		case outcomeDuplicate, outcomeBuffered:
			r.conn.WriteToUDP(wire.EncodeACK(pkt.Seq), peer)
			continue
		case outcomeDeliver:
			for _, chunk := range ready {
				n, err := f.Write(chunk)
				if err != nil {
					return written, totalPackets, fmt.Errorf("receiver: write chunk: %w", err)
				}
				sum.Write(chunk)
				written += int64(n)
			}
			lastProgress = r.reportProgress(reasm.ExpectedSeq(), totalPackets, lastProgress, highRTT)
		}

		r.conn.WriteToUDP(wire.EncodeACK(pkt.Seq), peer)
	}
}

// ackTermination sends the termination ACK repeatedly for reliability,
// using the shared repeat/delay table keyed only by high_rtt: the receiver
// never tracks extreme_rtt, so it can select the standard or high tier but
// never the extreme one (an intentional asymmetry with the sender).
func (r *Receiver) ackTermination(peer *net.UDPAddr, total uint32, highRTT bool) {
	repeat, emitDelay, _, _ := session.TerminationParams(session.Mode{HighRTT: highRTT})
	ack := wire.EncodeACK(total)
	for i := 0; i < repeat; i++ {
		r.conn.WriteToUDP(ack, peer)
		time.Sleep(emitDelay)
	}
}

// reportProgress logs progress at 5-percentage-point intervals, matching
// the original implementation's cadence.
func (r *Receiver) reportProgress(expectedSeq, totalPackets uint32, lastProgress float64, highRTT bool) float64 {
	if totalPackets == 0 {
		return lastProgress
	}
	current := 100 * float64(expectedSeq) / float64(totalPackets)
	if current-lastProgress >= 5 || expectedSeq >= totalPackets {
		r.log.Info("transfer progress", zap.Float64("percent", current), zap.Uint32("received", expectedSeq))
		return current
	}
	return lastProgress
}

// verify checks the assembled file's digest (if the header carried one) or
// else its size against the declared file size.
func (r *Receiver) verify(header wire.FileHeader, written int64, computed string) error {
	if header.Digest != "" {
		if computed != header.Digest {
			return fmt.Errorf("%w: expected md5 %s, got %s", urferr.ErrIntegrityFailure, header.Digest, computed)
		}
		return nil
	}
	if uint64(written) != header.Size {
		return fmt.Errorf("%w: expected %d bytes, got %d", urferr.ErrIntegrityFailure, header.Size, written)
	}
	return nil
}

// sanitizeTotal applies spec's MAX_REASONABLE_PACKETS guard: an
// out-of-range total is replaced by the size-derived estimate when one
// exists. total == 0 is legitimate when the declared file size is itself
// zero (a zero-byte transfer's termination marker); otherwise it is treated
// like an out-of-range value. The packet is dropped (ok == false) only when
// the total can't be recovered at all.
func sanitizeTotal(total, expected uint32) (value uint32, ok bool) {
	if total == 0 {
		if expected == 0 {
			return 0, true
		}
		return expected, true
	}
	if total > session.MaxReasonablePackets {
		if expected > 0 {
			return expected, true
		}
		return 0, false
	}
	return total, true
}

func isPeerReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}
