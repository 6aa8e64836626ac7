package session

import "time"

// Config is the immutable tuning-constant record spec.md §9 calls for:
// "Global tuning constants ... should be exposed as an immutable
// configuration record passed at session start; no process-wide mutable
// state is required." It is overridable from YAML by the CLI entry points
// (cmd/urft-send, cmd/urft-recv), mirroring the teacher's
// cmd/session-service/config.Config pattern. The sender and receiver read
// only the timing, retry, RTT-probe, quiescent-timeout and socket-buffer
// fields; ChunkSize, DatagramSizeLimit, Window and BaseTimeout are not read,
// since framing uses the wire package's constants and the per-session window
// and base timeout come from DeriveMode.
type Config struct {
	ChunkSize                int           `yaml:"ChunkSize"`
	DatagramSizeLimit        int           `yaml:"DatagramSizeLimit"`
	Window                   uint32        `yaml:"Window"`
	BaseTimeout              time.Duration `yaml:"BaseTimeout"`
	MaxTransferTime          time.Duration `yaml:"MaxTransferTime"`
	MaxRetries               int           `yaml:"MaxRetries"`
	HeaderTimeout            time.Duration `yaml:"HeaderTimeout"`
	RTTProbeTimeout          time.Duration `yaml:"RTTProbeTimeout"`
	RTTProbeAttempts         int           `yaml:"RTTProbeAttempts"`
	ReceiverQuiescentTimeout time.Duration `yaml:"ReceiverQuiescentTimeout"`
	SocketBufferBytes        int           `yaml:"SocketBufferBytes"`
}

// DefaultConfig returns the spec-mandated tuning constants. The CLI entry
// points use it as-is when no -config flag is given, and fall back to it
// after printing a notice when the named file does not exist, mirroring
// cmd/session-service/main.go's loadConfig behavior on os.IsNotExist.
func DefaultConfig() Config {
	return Config{
		ChunkSize:                1024,
		DatagramSizeLimit:        4096,
		Window:                   ChunkWindow,
		BaseTimeout:              BaseTimeout,
		MaxTransferTime:          MaxTransferTime,
		MaxRetries:               MaxRetries,
		HeaderTimeout:            HeaderTimeout,
		RTTProbeTimeout:          RTTProbeTimeout,
		RTTProbeAttempts:         RTTProbeAttempts,
		ReceiverQuiescentTimeout: ReceiverQuiescentTimeout,
		SocketBufferBytes:        256 * 1024,
	}
}
