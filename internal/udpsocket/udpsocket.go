// Package udpsocket holds the small amount of raw-socket setup shared by the
// sender and receiver: best-effort send/receive buffer sizing, grounded on
// the teacher's transport.Conn.setSocketOptions pattern of logging failures
// rather than treating them as fatal.
package udpsocket

import (
	"net"

	"go.uber.org/zap"
)

// RaiseBuffers attempts to raise the UDP socket's kernel send and receive
// buffers to size bytes. Failure is logged and otherwise ignored: the
// transfer proceeds at whatever buffer size the OS already granted.
func RaiseBuffers(conn *net.UDPConn, size int, log *zap.Logger) {
	if err := conn.SetReadBuffer(size); err != nil {
		log.Warn("failed to raise socket read buffer", zap.Int("bytes", size), zap.Error(err))
	}
	if err := conn.SetWriteBuffer(size); err != nil {
		log.Warn("failed to raise socket write buffer", zap.Int("bytes", size), zap.Error(err))
	}
}
