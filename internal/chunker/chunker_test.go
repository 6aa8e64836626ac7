package chunker

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCountBoundaries(t *testing.T) {
	cases := []struct {
		size uint64
		want uint32
	}{
		{0, 0},
		{1, 1},
		{1024, 1},
		{1025, 2},
		{1048576, 1024}, // exact multiple: 1 MiB / 1024 bytes
	}
	for _, c := range cases {
		if got := Count(c.size); got != c.want {
			t.Fatalf("Count(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestSourceChunksExactMultiple(t *testing.T) {
	path := writeTemp(t, 2048)
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", src.Total())
	}
	for i := uint32(0); i < src.Total(); i++ {
		chunk, err := src.Chunk(i)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunk) != 1024 {
			t.Fatalf("chunk %d length = %d, want 1024", i, len(chunk))
		}
	}
}

func TestSourceLastChunkShort(t *testing.T) {
	path := writeTemp(t, 1025)
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", src.Total())
	}
	first, err := src.Chunk(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1024 {
		t.Fatalf("first chunk length = %d, want 1024", len(first))
	}
	last, err := src.Chunk(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 {
		t.Fatalf("last chunk length = %d, want 1", len(last))
	}
}

func TestSourceOneByteFile(t *testing.T) {
	path := writeTemp(t, 1)
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Total() != 1 {
		t.Fatalf("Total() = %d, want 1", src.Total())
	}
	chunk, err := src.Chunk(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(chunk, []byte{0}) {
		t.Fatalf("got %v, want [0]", chunk)
	}
}

func TestSourceZeroByteFile(t *testing.T) {
	path := writeTemp(t, 0)
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Total() != 0 {
		t.Fatalf("Total() = %d, want 0", src.Total())
	}
	if _, err := src.Chunk(0); err == nil {
		t.Fatal("expected an error reading a chunk from a zero-byte file")
	}
}

func TestSourceChunkOutOfRange(t *testing.T) {
	path := writeTemp(t, 1024)
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, err := src.Chunk(1); err == nil {
		t.Fatal("expected an error reading chunk index == Total()")
	}
}
