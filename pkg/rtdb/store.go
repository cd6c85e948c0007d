package rtdb

import (
	"errors"
	"io"
)

// Store is the random-access byte stream backing a table: absolute and
// relative seek, read, and write. Satisfied by [*Buffer] and [os.File].
//
// The table engine is the only mutator of a store after creation;
// callers must not touch the store while a table owns it.
type Store interface {
	io.Reader
	io.Writer
	io.Seeker
}

var errNegativeSeek = errors.New("rtdb: seek to negative offset")

// Buffer is an in-memory [Store] over a growable byte slice. Writing
// past the end extends the slice; seeking past the end and writing
// zero-fills the gap, mirroring file-hole semantics.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns a buffer reading from and writing to data. The
// buffer takes ownership of the slice. Pass nil to start empty.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the buffer's contents. The slice is valid until the
// next write.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the buffer's length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)

	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	if need := b.pos + int64(len(p)); need > int64(len(b.data)) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}

	n := copy(b.data[b.pos:], p)
	b.pos += int64(n)

	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, errors.New("rtdb: invalid seek whence")
	}

	if pos < 0 {
		return 0, errNegativeSeek
	}

	b.pos = pos

	return pos, nil
}
