package rtdb

// Iter walks a table's retained window in ascending time order, one
// grid step at a time. It is a lazy, finite, non-restartable sequence.
//
// An iterator advances the table's cursor: it holds an exclusive
// borrow of the table for its lifetime, and no other operation may be
// invoked on the table until iteration is finished.
//
//	it, err := table.Iter()
//	if err != nil {
//	    return err
//	}
//	for it.Next() {
//	    use(it.Time(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type Iter[T any, P Datapointer[T]] struct {
	table *Table[T, P]
	now   uint64
	end   uint64
	cur   uint64
	val   T
	err   error
}

// Iter returns an iterator over the full retained window, from the
// oldest sample to the most recent, inclusive.
//
// Possible errors: [ErrClosed], [ErrIO].
func (t *Table[T, P]) Iter() (*Iter[T, P], error) {
	if t.store == nil {
		return nil, ErrClosed
	}

	now := t.header.first()
	end := t.header.roundDown(t.header.tUpdated)

	if err := t.seekTo(now); err != nil {
		return nil, err
	}

	return &Iter[T, P]{table: t, now: now, end: end}, nil
}

// Range returns an iterator over [start, end], both endpoints rounded
// down to the grid after validation. A start past end yields an empty
// sequence.
//
// Possible errors: [ErrClosed], [ErrOutOfRangePast],
// [ErrOutOfRangeFuture], [ErrIO].
func (t *Table[T, P]) Range(start, end uint64) (*Iter[T, P], error) {
	if t.store == nil {
		return nil, ErrClosed
	}

	if err := t.header.checkAccess(start); err != nil {
		return nil, err
	}

	if err := t.header.checkAccess(end); err != nil {
		return nil, err
	}

	now := t.header.roundDown(start)
	last := t.header.roundDown(end)

	if err := t.seekTo(now); err != nil {
		return nil, err
	}

	return &Iter[T, P]{table: t, now: now, end: last}, nil
}

// Next advances to the next sample. It returns false when the window
// is exhausted or a read failed; distinguish via [Iter.Err].
func (it *Iter[T, P]) Next() bool {
	if it.err != nil || it.now > it.end {
		return false
	}

	if err := it.table.readIn(); err != nil {
		it.err = err
		return false
	}

	it.cur = it.now
	it.val = it.table.buf
	it.now += it.table.header.tStep

	return true
}

// Time returns the grid time of the current sample.
func (it *Iter[T, P]) Time() uint64 { return it.cur }

// Value returns the current sample.
func (it *Iter[T, P]) Value() T { return it.val }

// Err returns the first read failure encountered, if any.
func (it *Iter[T, P]) Err() error { return it.err }
