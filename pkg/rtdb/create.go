package rtdb

import (
	"math"
	"os"
)

// NewMemory creates a table backed by an in-memory [Buffer], seeded
// with first as the sample for the start time. With
// [Options.Preallocate] the buffer is created zeroed at the full ring
// size; otherwise it grows append-only until the ring first wraps.
func NewMemory[T any, P Datapointer[T]](opts Options, first T) (*Table[T, P], error) {
	var buf *Buffer

	if opts.preallocate {
		size := headerSize + P(&first).Size()*opts.dpCount()
		if size > math.MaxInt64 {
			return nil, ErrIntConv
		}

		buf = NewBuffer(make([]byte, size))
	} else {
		buf = NewBuffer(nil)
	}

	return New[T, P](opts, first, buf)
}

// CreateFile creates a file-backed table at path, seeded with first as
// the sample for the start time. Without [Options.Overwrite] an
// existing file is an error; with it, the file is truncated. With
// [Options.Preallocate] the file is extended to the full ring size
// before the header is written.
//
// The file is owned by the table and closed by [Table.Close].
func CreateFile[T any, P Datapointer[T]](opts Options, first T, path string) (*Table[T, P], error) {
	flags := os.O_RDWR | os.O_CREATE
	if opts.overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, ioErr("create file", err)
	}

	if opts.preallocate {
		size := headerSize + P(&first).Size()*opts.dpCount()
		if size > math.MaxInt64 {
			_ = f.Close()
			return nil, ErrIntConv
		}

		if err := preallocate(f, int64(size)); err != nil {
			_ = f.Close()
			return nil, ioErr("preallocate", err)
		}
	}

	t, err := New[T, P](opts, first, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return t, nil
}
