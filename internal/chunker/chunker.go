// Package chunker splits a file into the fixed-size payload chunks spec.md
// §3 defines: contiguous slices of at most wire.ChunkSize bytes, the last
// possibly shorter, with N = ceil(size/chunkSize) (N = 0 for an empty file).
package chunker

import (
	"fmt"
	"io"
	"os"

	"github.com/urft/urft/internal/wire"
)

// Source reads chunks of a file lazily, by index, without holding the whole
// file in memory.
type Source struct {
	f     *os.File
	size  int64
	count uint32
}

// Open opens path and computes its chunk count. The caller must Close it.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chunker: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("chunker: stat %s: %w", path, err)
	}
	return &Source{f: f, size: info.Size(), count: Count(uint64(info.Size()))}, nil
}

// Count returns N = ceil(size/ChunkSize), the number of chunks a file of the
// given size is partitioned into. A zero-byte file yields N = 0.
func Count(size uint64) uint32 {
	if size == 0 {
		return 0
	}
	return uint32((size + wire.ChunkSize - 1) / wire.ChunkSize)
}

// Size returns the file's total byte length.
func (s *Source) Size() int64 { return s.size }

// Total returns N, the number of chunks.
func (s *Source) Total() uint32 { return s.count }

// Chunk reads the payload bytes of the chunk at the given zero-based index.
// It fails if idx is out of [0, Total()).
func (s *Source) Chunk(idx uint32) ([]byte, error) {
	if idx >= s.count {
		return nil, fmt.Errorf("chunker: index %d out of range [0, %d)", idx, s.count)
	}
	offset := int64(idx) * wire.ChunkSize
	length := int64(wire.ChunkSize)
	if remaining := s.size - offset; remaining < length {
		length = remaining
	}
	buf := make([]byte, length)
	if _, err := s.f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, fmt.Errorf("chunker: read chunk %d: %w", idx, err)
	}
	return buf, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.f.Close()
}
