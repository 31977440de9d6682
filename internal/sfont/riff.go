package sfont

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// chunk is one RIFF chunk: a 4-byte id, a little-endian size, and size bytes
// of data (plus a pad byte if size is odd, per the RIFF rule).
type chunk struct {
	id   [4]byte
	data []byte
}

func (c chunk) idString() string {
	return string(c.id[:])
}

// chunkReader walks a flat sequence of sibling chunks inside a byte slice,
// the way Alextopher-sf/chunk.go walks a whole file, but over an in-memory
// slice (the parser never does I/O) and with offset-aware bounds checking
// so an oversized chunk is reported as TruncatedChunk rather than panicking.
type chunkReader struct {
	buf []byte
	pos int
}

func newChunkReader(buf []byte) *chunkReader {
	return &chunkReader{buf: buf}
}

// next reads one chunk id+size+data from the current position. It returns
// ok=false when the reader is exhausted (no more sibling chunks).
func (r *chunkReader) next() (chunk, bool, error) {
	if r.pos >= len(r.buf) {
		return chunk{}, false, nil
	}
	if r.pos+8 > len(r.buf) {
		return chunk{}, false, errf(TruncatedChunk, fmt.Sprintf("chunk header at offset %d runs past end of data", r.pos))
	}
	var c chunk
	copy(c.id[:], r.buf[r.pos:r.pos+4])
	size := binary.LittleEndian.Uint32(r.buf[r.pos+4 : r.pos+8])
	start := r.pos + 8
	end := start + int(size)
	if end > len(r.buf) || end < start {
		return chunk{}, false, errf(TruncatedChunk, fmt.Sprintf("chunk %q declares size %d but only %d bytes remain", c.idString(), size, len(r.buf)-start))
	}
	c.data = r.buf[start:end]
	r.pos = end
	if size%2 == 1 {
		// RIFF pad byte: present only if there's room; absence at EOF is tolerated.
		if r.pos < len(r.buf) {
			r.pos++
		}
	}
	return c, true, nil
}

// expect reads the next chunk and requires it to carry the given id.
func (r *chunkReader) expect(id string) (chunk, error) {
	c, ok, err := r.next()
	if err != nil {
		return chunk{}, err
	}
	if !ok {
		return chunk{}, errf(TruncatedChunk, fmt.Sprintf("expected chunk %q, found end of data", id))
	}
	if c.idString() != id {
		return chunk{}, errf(InvalidContainer, fmt.Sprintf("expected chunk %q, found %q", id, c.idString()))
	}
	return c, nil
}

// listForm reads a LIST/RIFF container chunk, validates its 4-byte form
// type, and returns a chunkReader over the remaining nested data.
func listForm(c chunk, wantForm string) (*chunkReader, error) {
	if len(c.data) < 4 {
		return nil, errf(InvalidContainer, fmt.Sprintf("container chunk %q too short for a form type", c.idString()))
	}
	form := string(c.data[:4])
	if form != wantForm {
		return nil, errf(InvalidContainer, fmt.Sprintf("expected form %q in chunk %q, found %q", wantForm, c.idString(), form))
	}
	return newChunkReader(c.data[4:]), nil
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
