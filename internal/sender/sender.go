// Package sender implements the URFT sending side of a transfer: the file
// header handshake, RTT probing, windowed streaming with retransmission, and
// the termination handshake. It is generalized from the teacher's
// reliability.SendBuffer (cumulative-ACK + SACK, RFC 6298 RTO) down to
// URFT's simpler single-cumulative-ACK scheme driven entirely by the
// session package's table-driven pacing policy.
package sender

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/urft/urft/internal/chunker"
	"github.com/urft/urft/internal/digest"
	"github.com/urft/urft/internal/session"
	"github.com/urft/urft/internal/udpsocket"
	"github.com/urft/urft/internal/urferr"
	"github.com/urft/urft/internal/wire"
	"github.com/urft/urft/pkg/guuid"
)

// Result summarizes a completed send.
type Result struct {
	Total        uint32
	Retransmits  uint64
	RTT          time.Duration
	ElapsedTotal time.Duration
}

// Sender drives one outbound transfer over an already-dialed UDP socket.
type Sender struct {
	conn *net.UDPConn
	cfg  session.Config
	log  *zap.Logger
}

// New creates a Sender bound to a connected UDP socket (net.DialUDP), per
// the teacher's transport.Dial pattern of pinning the peer address at the
// socket layer rather than passing it with every WriteTo.
func New(conn *net.UDPConn, cfg session.Config, log *zap.Logger) *Sender {
	udpsocket.RaiseBuffers(conn, cfg.SocketBufferBytes, log)
	if id, err := guuid.New(); err == nil {
		log = log.With(zap.String("session_id", id.String()))
	}
	return &Sender{conn: conn, cfg: cfg, log: log}
}

// entry tracks one in-flight, unacknowledged data packet.
type entry struct {
	encoded  []byte
	lastSend time.Time
	retries  int
}

// Send runs the full sender state machine against path: header handshake,
// RTT probe, windowed streaming, and termination.
func (s *Sender) Send(path string) (Result, error) {
	src, err := chunker.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	sum, err := digest.File(path)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	deadline := start.Add(s.cfg.MaxTransferTime)

	header := wire.FileHeader{Name: filepath.Base(path), Size: uint64(src.Size()), Digest: sum}
	if err := s.handshakeHeader(header); err != nil {
		return Result{}, err
	}

	rtt := s.probeRTT()
	mode := session.DeriveMode(rtt)
	s.log.Info("session mode selected",
		zap.Duration("rtt", rtt), zap.Bool("high_rtt", mode.HighRTT), zap.Bool("extreme_rtt", mode.ExtremeRTT),
		zap.Uint32("window", mode.Window))

	retransmits, err := s.stream(src, mode, deadline)
	if err != nil {
		return Result{}, err
	}

	if err := s.terminate(mode, src.Total(), deadline); err != nil {
		return Result{}, err
	}

	return Result{
		Total:        src.Total(),
		Retransmits:  retransmits,
		RTT:          rtt,
		ElapsedTotal: time.Since(start),
	}, nil
}

// handshakeHeader sends the textual file header line and waits for
// wire.HeaderAck, retrying up to the configured MaxRetries at the
// configured HeaderTimeout.
func (s *Sender) handshakeHeader(h wire.FileHeader) error {
	line := []byte(wire.EncodeHeader(h))
	buf := make([]byte, wire.DatagramSizeLimit)

	for retry := 0; retry < s.cfg.MaxRetries; retry++ {
		if _, err := s.conn.Write(line); err != nil {
			return fmt.Errorf("sender: write header: %w", err)
		}
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.HeaderTimeout))
		n, err := s.conn.Read(buf)
		if err != nil {
			continue
		}
		if string(buf[:n]) == wire.HeaderAck {
			return nil
		}
	}
	return urferr.ErrHeaderTimeout
}

// probeRTT issues up to the configured RTTProbeAttempts RTT_PROBE datagrams
// and returns the round-trip time of the first one that is answered. It
// returns 0 (standard mode) if none is answered, matching the original
// client's "RTT unmeasured" fallback.
func (s *Sender) probeRTT() time.Duration {
	buf := make([]byte, wire.DatagramSizeLimit)
	for attempt := 0; attempt < s.cfg.RTTProbeAttempts; attempt++ {
		sent := time.Now()
		if _, err := s.conn.Write([]byte(wire.RTTProbe)); err != nil {
			continue
		}
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.RTTProbeTimeout))
		n, err := s.conn.Read(buf)
		if err != nil {
			continue
		}
		if string(buf[:n]) == wire.RTTAck {
			return time.Since(sent)
		}
	}
	s.log.Warn("no RTT probe was answered, falling back to standard mode")
	return 0
}

// stream runs the windowed send loop until every chunk is acknowledged.
func (s *Sender) stream(src *chunker.Source, mode session.Mode, deadline time.Time) (uint64, error) {
	total := src.Total()
	if total == 0 {
		return 0, nil
	}

	window := newSendWindow()
	var next uint32
	var retransmits uint64
	start := time.Now()
	ackBuf := make([]byte, wire.AckSize)
	limiter := burstLimiter(mode)

	for window.Base() < total {
		if time.Now().After(deadline) {
			return retransmits, urferr.ErrTransferDeadline
		}

		elapsed := time.Since(start)
		burst := session.BurstCap(mode, elapsed, window.Base(), total)
		sent := 0
		for uint32(window.Len()) < mode.Window && next < total && sent < burst {
			waitForSlot(limiter, mode.BaseTimeout)
			chunk, err := src.Chunk(next)
			if err != nil {
				return retransmits, err
			}
			encoded := wire.EncodeData(next, total, chunk)
			if _, err := s.conn.Write(encoded); err != nil {
				return retransmits, fmt.Errorf("sender: write data %d: %w", next, err)
			}
			window.Add(next, encoded, time.Now())
			next++
			sent++
		}

		s.conn.SetReadDeadline(time.Now().Add(mode.BaseTimeout))
		n, err := s.conn.Read(ackBuf)
		if err == nil {
			if ackSeq, decErr := wire.DecodeACK(ackBuf[:n]); decErr == nil {
				window.Ack(ackSeq, total)
				_, remainingPct, _, _ := session.Progress(elapsed, window.Base(), total)
				if remainingPct < 40 && uint32(window.Len()) < mode.Window/2 {
					room := int(mode.Window) - window.Len()
					if room > 3 {
						room = 3
					}
					for i := 0; i < room && next < total; i++ {
						waitForSlot(limiter, mode.BaseTimeout)
						chunk, cErr := src.Chunk(next)
						if cErr != nil {
							return retransmits, cErr
						}
						encoded := wire.EncodeData(next, total, chunk)
						if _, wErr := s.conn.Write(encoded); wErr != nil {
							return retransmits, fmt.Errorf("sender: write data %d: %w", next, wErr)
						}
						window.Add(next, encoded, time.Now())
						next++
					}
				}
			}
			continue
		}

		// Read timed out: check every in-flight packet's dynamic timeout.
		now := time.Now()
		for seq, e := range window.InFlight() {
			t := session.DynamicTimeout(mode, e.retries, time.Since(start), window.Base(), total)
			if now.Sub(e.lastSend) < t {
				continue
			}
			if e.retries >= s.cfg.MaxRetries {
				return retransmits, fmt.Errorf("%w: sequence %d", urferr.ErrPacketExhausted, seq)
			}
			if _, err := s.conn.Write(e.encoded); err != nil {
				return retransmits, fmt.Errorf("sender: retransmit %d: %w", seq, err)
			}
			e.lastSend = now
			e.retries++
			retransmits++
		}
	}

	return retransmits, nil
}

// terminate sends the termination marker (seq == total, empty payload)
// repeatedly until the receiver's matching ACK is observed, per the
// repeat/delay/ack-timeout tuple session.TerminationParams selects.
func (s *Sender) terminate(mode session.Mode, total uint32, deadline time.Time) error {
	repeat, emitDelay, ackTimeout, settleDelay := session.TerminationParams(mode)
	marker := wire.EncodeData(total, total, nil)
	ackBuf := make([]byte, wire.AckSize)

	for retry := 0; retry < s.cfg.MaxRetries; retry++ {
		if time.Now().After(deadline) {
			return urferr.ErrTransferDeadline
		}
		for i := 0; i < repeat; i++ {
			if _, err := s.conn.Write(marker); err != nil {
				return fmt.Errorf("sender: write termination: %w", err)
			}
			time.Sleep(emitDelay)
		}

		s.conn.SetReadDeadline(time.Now().Add(ackTimeout))
		n, err := s.conn.Read(ackBuf)
		if err == nil {
			if ackSeq, decErr := wire.DecodeACK(ackBuf[:n]); decErr == nil && ackSeq == total {
				return nil
			}
		}
		if settleDelay > 0 {
			time.Sleep(settleDelay)
		}
	}
	return urferr.ErrPacketExhausted
}

// burstLimiter builds a token-bucket limiter holding mode.Window tokens and
// refilling at mode.Window tokens per base timeout. A burst that finds the
// bucket full leaves back-to-back; once the bucket is drained, new-packet
// sends (not retransmissions) are paced to that refill rate whether or not ACKs are
// arriving, so the limiter can hold a transfer below the rate the
// burst-cap/window policy alone would allow.
func burstLimiter(mode session.Mode) *rate.Limiter {
	perSecond := float64(mode.Window) / mode.BaseTimeout.Seconds()
	return rate.NewLimiter(rate.Limit(perSecond), int(mode.Window))
}

// waitForSlot blocks for a limiter token, bounded by budget so a slow
// limiter can never stall the retransmission loop past one base timeout.
func waitForSlot(limiter *rate.Limiter, budget time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	_ = limiter.Wait(ctx)
}
