package rtdb

import (
	"encoding/binary"
	"io"
	"math"
)

// Table is a round-robin time-series table over a record type T.
//
// The engine owns its backing store, a scratch record, and a slot
// cursor tracking the store's byte cursor. All operations are
// synchronous; none are safe for concurrent use. After an error that
// wraps [ErrIO] the cursor state is unknown and the table should be
// discarded and reloaded.
type Table[T any, P Datapointer[T]] struct {
	maxSkip  uint64
	skipMode FwdSkipMode
	header   header
	store    Store
	buf      T
	slot     uint64
}

// New creates a table on an empty store: the header is written,
// followed by the first sample at slot 0. The first sample is the value
// read back for any access time in [tStart, tStart+tStep) until the
// next insert.
func New[T any, P Datapointer[T]](opts Options, first T, store Store) (*Table[T, P], error) {
	h := newHeader(opts, P(&first))
	if err := h.validate(opts, P(&first)); err != nil {
		return nil, err
	}

	t := &Table[T, P]{
		maxSkip:  opts.maxFwdSkip,
		skipMode: opts.fwdSkipMode,
		header:   h,
		store:    store,
	}

	if _, err := store.Seek(0, io.SeekStart); err != nil {
		return nil, ioErr("seek start", err)
	}

	if _, err := store.Write(h.encode()); err != nil {
		return nil, ioErr("write header", err)
	}

	if err := P(&first).Write(store); err != nil {
		return nil, ioErr("write first sample", err)
	}

	// The byte cursor sits just past slot 0 now.
	t.slot = 1

	if err := h.checkStreamLen(store); err != nil {
		return nil, err
	}

	return t, nil
}

// Load opens a table from an existing store, validating the header
// against opts and the zero value of T, then the stream length.
func Load[T any, P Datapointer[T]](opts Options, store Store) (*Table[T, P], error) {
	if _, err := store.Seek(0, io.SeekStart); err != nil {
		return nil, ioErr("seek start", err)
	}

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(store, buf); err != nil {
		return nil, ioErr("read header", err)
	}

	h := decodeHeader(buf)

	var zero T
	if err := h.validate(opts, P(&zero)); err != nil {
		return nil, err
	}

	if err := h.checkStreamLen(store); err != nil {
		return nil, err
	}

	return &Table[T, P]{
		maxSkip:  opts.maxFwdSkip,
		skipMode: opts.fwdSkipMode,
		header:   h,
		store:    store,
	}, nil
}

// Insert stores v as the sample for time now. now must quantize to a
// grid point strictly after the last update and less than one full
// window ahead; gaps of more than one step are filled per the
// forward-skip mode.
//
// Possible errors: [ErrClosed], [ErrUpdateTooEarly], [ErrUpdateTooLate],
// [ErrMaxSkipExceeded], [ErrIO].
func (t *Table[T, P]) Insert(now uint64, v T) error {
	if t.store == nil {
		return ErrClosed
	}

	if now <= t.header.tUpdated {
		return ErrUpdateTooEarly
	}

	d := t.header.delta(t.header.tUpdated, now)

	switch {
	case d == 0:
		return ErrUpdateTooEarly
	case d == 1:
		if err := t.seekTo(t.header.tUpdated); err != nil {
			return err
		}

		if err := t.seekFwd(); err != nil {
			return err
		}
	case d < t.header.dpCount:
		if err := t.skipFwd(d-1, &v); err != nil {
			return err
		}
	default:
		return ErrUpdateTooLate
	}

	if err := t.writeOut(P(&v)); err != nil {
		return err
	}

	// The header records the grid point, not the raw insert time.
	return t.updateHeader(t.header.roundDown(now))
}

// Get returns the sample stored for time tm, which is quantized to the
// grid first.
//
// Possible errors: [ErrClosed], [ErrOutOfRangePast],
// [ErrOutOfRangeFuture], [ErrIO].
func (t *Table[T, P]) Get(tm uint64) (T, error) {
	var zero T

	if t.store == nil {
		return zero, ErrClosed
	}

	if err := t.header.checkAccess(tm); err != nil {
		return zero, err
	}

	if err := t.seekTo(tm); err != nil {
		return zero, err
	}

	if err := t.readIn(); err != nil {
		return zero, err
	}

	return t.buf, nil
}

// First returns the oldest retained sample and its grid time.
func (t *Table[T, P]) First() (uint64, T, error) {
	tm := t.header.first()
	v, err := t.Get(tm)

	return tm, v, err
}

// Last returns the most recently inserted sample and its time.
func (t *Table[T, P]) Last() (uint64, T, error) {
	tm := t.header.tUpdated
	v, err := t.Get(tm)

	return tm, v, err
}

// IntoInner relinquishes the backing store to the caller, preserving
// its byte image. The table is consumed: every subsequent operation
// returns [ErrClosed].
func (t *Table[T, P]) IntoInner() Store {
	s := t.store
	t.store = nil

	return s
}

// Close releases the backing store, closing it if it is an io.Closer.
// Safe to call more than once.
func (t *Table[T, P]) Close() error {
	s := t.store
	if s == nil {
		return nil
	}

	t.store = nil

	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return ioErr("close store", err)
		}
	}

	return nil
}

// skipFwd fills the skip slots between the last update and the new
// sample. The previous sample is read into the scratch buffer first;
// the fill policy then decides what each intermediate slot receives.
func (t *Table[T, P]) skipFwd(skip uint64, next *T) error {
	if skip > t.maxSkip {
		return ErrMaxSkipExceeded
	}

	if err := t.seekTo(t.header.tUpdated); err != nil {
		return err
	}

	if err := t.readIn(); err != nil {
		return err
	}

	prev := t.buf

	for i := uint64(0); i < skip; i++ {
		var err error

		switch t.skipMode {
		case SkipDoNothing:
			err = t.seekFwd()
		case SkipLinear:
			var v T
			P(&v).Lerp(&prev, next, i+1, skip+1)
			err = t.writeOut(P(&v))
		case SkipNearest:
			if i < skip/2 {
				err = t.writeOut(P(&prev))
			} else {
				err = t.writeOut(P(next))
			}
		case SkipZeroed:
			var zero T
			err = t.writeOut(P(&zero))
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// increment advances the slot cursor, re-seeking to the body start on
// wrap so the store's byte cursor tracks slot 0.
func (t *Table[T, P]) increment() error {
	t.slot = (t.slot + 1) % t.header.dpCount

	if t.slot == 0 {
		return t.seekStart(headerSize)
	}

	return nil
}

// seekStart positions the store at an absolute offset.
func (t *Table[T, P]) seekStart(off uint64) error {
	if off > math.MaxInt64 {
		return ErrIntConv
	}

	if _, err := t.store.Seek(int64(off), io.SeekStart); err != nil {
		return ioErr("seek", err)
	}

	return nil
}

// seekTo positions the cursor at the slot for time tm.
func (t *Table[T, P]) seekTo(tm uint64) error {
	t.slot = t.header.slot(tm)
	return t.seekStart(t.header.offset(t.slot))
}

// seekFwd advances the byte cursor one slot without touching it.
func (t *Table[T, P]) seekFwd() error {
	if t.header.dpSize > math.MaxInt64 {
		return ErrIntConv
	}

	if _, err := t.store.Seek(int64(t.header.dpSize), io.SeekCurrent); err != nil {
		return ioErr("seek forward", err)
	}

	return t.increment()
}

func (t *Table[T, P]) writeOut(dp Datapoint) error {
	if err := dp.Write(t.store); err != nil {
		return ioErr("write sample", err)
	}

	return t.increment()
}

func (t *Table[T, P]) readIn() error {
	if err := P(&t.buf).Read(t.store); err != nil {
		return ioErr("read sample", err)
	}

	return t.increment()
}

// updateHeader persists the new last-updated time and mirrors it in
// memory.
func (t *Table[T, P]) updateHeader(now uint64) error {
	if err := t.seekStart(offTUpdated); err != nil {
		return err
	}

	var b [8]byte

	binary.LittleEndian.PutUint64(b[:], now)

	if _, err := t.store.Write(b[:]); err != nil {
		return ioErr("write header", err)
	}

	t.header.tUpdated = now

	return nil
}
