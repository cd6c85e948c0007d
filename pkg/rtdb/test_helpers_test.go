package rtdb

import (
	"io"
	"testing"
)

// The record types below implement the contract by hand. Besides
// serving the tests they pin the fallback path: dpgen output and
// hand-written method sets must stay interchangeable.

// pair groups two i32 leaves.
type pair struct {
	A I32
	B I32
}

func (x *pair) Size() uint64 { return x.A.Size() + x.B.Size() }

func (x *pair) Hash() uint64 {
	h := uint64(1)
	h *= x.A.Hash()
	h *= x.B.Hash()

	return h
}

func (x *pair) Write(w io.Writer) error {
	if err := x.A.Write(w); err != nil {
		return err
	}

	return x.B.Write(w)
}

func (x *pair) Read(r io.Reader) error {
	if err := x.A.Read(r); err != nil {
		return err
	}

	return x.B.Read(r)
}

func (x *pair) Lerp(prev, next *pair, num, den uint64) {
	x.A.Lerp(&prev.A, &next.A, num, den)
	x.B.Lerp(&prev.B, &next.B, num, den)
}

// flat4 is four i32 leaves in one record.
type flat4 struct {
	A I32
	B I32
	C I32
	D I32
}

func (x *flat4) Size() uint64 {
	return x.A.Size() + x.B.Size() + x.C.Size() + x.D.Size()
}

func (x *flat4) Hash() uint64 {
	h := uint64(1)
	h *= x.A.Hash()
	h *= x.B.Hash()
	h *= x.C.Hash()
	h *= x.D.Hash()

	return h
}

func (x *flat4) Write(w io.Writer) error {
	for _, f := range []*I32{&x.A, &x.B, &x.C, &x.D} {
		if err := f.Write(w); err != nil {
			return err
		}
	}

	return nil
}

func (x *flat4) Read(r io.Reader) error {
	for _, f := range []*I32{&x.A, &x.B, &x.C, &x.D} {
		if err := f.Read(r); err != nil {
			return err
		}
	}

	return nil
}

func (x *flat4) Lerp(prev, next *flat4, num, den uint64) {
	x.A.Lerp(&prev.A, &next.A, num, den)
	x.B.Lerp(&prev.B, &next.B, num, den)
	x.C.Lerp(&prev.C, &next.C, num, den)
	x.D.Lerp(&prev.D, &next.D, num, den)
}

// nested4 groups the same four i32 leaves as flat4, two levels deep.
type nested4 struct {
	AB pair
	CD pair
}

func (x *nested4) Size() uint64 { return x.AB.Size() + x.CD.Size() }

func (x *nested4) Hash() uint64 {
	h := uint64(1)
	h *= x.AB.Hash()
	h *= x.CD.Hash()

	return h
}

func (x *nested4) Write(w io.Writer) error {
	if err := x.AB.Write(w); err != nil {
		return err
	}

	return x.CD.Write(w)
}

func (x *nested4) Read(r io.Reader) error {
	if err := x.AB.Read(r); err != nil {
		return err
	}

	return x.CD.Read(r)
}

func (x *nested4) Lerp(prev, next *nested4, num, den uint64) {
	x.AB.Lerp(&prev.AB, &next.AB, num, den)
	x.CD.Lerp(&prev.CD, &next.CD, num, den)
}

// quad carries the same four i32 leaves as a fixed array.
type quad [4]I32

func (x *quad) Size() uint64 {
	var n uint64
	for i := range x {
		n += x[i].Size()
	}

	return n
}

func (x *quad) Hash() uint64 {
	h := uint64(1)
	for i := range x {
		h *= x[i].Hash()
	}

	return h
}

func (x *quad) Write(w io.Writer) error {
	for i := range x {
		if err := x[i].Write(w); err != nil {
			return err
		}
	}

	return nil
}

func (x *quad) Read(r io.Reader) error {
	for i := range x {
		if err := x[i].Read(r); err != nil {
			return err
		}
	}

	return nil
}

func (x *quad) Lerp(prev, next *quad, num, den uint64) {
	for i := range x {
		x[i].Lerp(&prev[i], &next[i], num, den)
	}
}

// newMem creates an in-memory table or fails the test.
func newMem[T any, P Datapointer[T]](t *testing.T, opts Options, first T) *Table[T, P] {
	t.Helper()

	tb, err := NewMemory[T, P](opts, first)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	return tb
}

// mustInsert inserts or fails the test.
func mustInsert[T any, P Datapointer[T]](t *testing.T, tb *Table[T, P], tm uint64, v T) {
	t.Helper()

	if err := tb.Insert(tm, v); err != nil {
		t.Fatalf("Insert(%d): %v", tm, err)
	}
}

// mustGet reads a sample or fails the test.
func mustGet[T any, P Datapointer[T]](t *testing.T, tb *Table[T, P], tm uint64) T {
	t.Helper()

	v, err := tb.Get(tm)
	if err != nil {
		t.Fatalf("Get(%d): %v", tm, err)
	}

	return v
}
