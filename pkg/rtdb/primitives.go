package rtdb

import (
	"encoding/binary"
	"io"
	"math"
)

// Primitive datapoint types. Each is a defined type over the matching
// builtin numeric so that values convert freely, with the contract
// implemented on the pointer form.
type (
	I8  int8
	U8  uint8
	I16 int16
	U16 uint16
	I32 int32
	U32 uint32
	I64 int64
	U64 uint64
	F32 float32
	F64 float64
)

// lerpSigned interpolates toward next with truncating division.
func lerpSigned(p, n int64, num, den uint64) int64 {
	return p + (n-p)*int64(num)/int64(den)
}

// lerpUnsigned keeps the intermediate difference non-negative so that
// decreasing series interpolate without wrapping.
func lerpUnsigned(p, n, num, den uint64) uint64 {
	if n >= p {
		return p + (n-p)*num/den
	}

	return p - (p-n)*num/den
}

func lerpFloat(p, n float64, num, den uint64) float64 {
	return p + (n-p)*float64(num)/float64(den)
}

// readFull reads exactly len(buf) bytes.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

func (x *I8) Size() uint64 { return 1 }
func (x *I8) Hash() uint64 { return seedI8 * hashPrime }

func (x *I8) Write(w io.Writer) error {
	_, err := w.Write([]byte{byte(*x)})
	return err
}

func (x *I8) Read(r io.Reader) error {
	var b [1]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = I8(b[0])

	return nil
}

func (x *I8) Lerp(prev, next *I8, num, den uint64) {
	*x = I8(lerpSigned(int64(*prev), int64(*next), num, den))
}

func (x *U8) Size() uint64 { return 1 }
func (x *U8) Hash() uint64 { return seedU8 * hashPrime }

func (x *U8) Write(w io.Writer) error {
	_, err := w.Write([]byte{byte(*x)})
	return err
}

func (x *U8) Read(r io.Reader) error {
	var b [1]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = U8(b[0])

	return nil
}

func (x *U8) Lerp(prev, next *U8, num, den uint64) {
	*x = U8(lerpUnsigned(uint64(*prev), uint64(*next), num, den))
}

func (x *I16) Size() uint64 { return 2 }
func (x *I16) Hash() uint64 { return seedI16 * hashPrime }

func (x *I16) Write(w io.Writer) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *I16) Read(r io.Reader) error {
	var b [2]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = I16(binary.LittleEndian.Uint16(b[:]))

	return nil
}

func (x *I16) Lerp(prev, next *I16, num, den uint64) {
	*x = I16(lerpSigned(int64(*prev), int64(*next), num, den))
}

func (x *U16) Size() uint64 { return 2 }
func (x *U16) Hash() uint64 { return seedU16 * hashPrime }

func (x *U16) Write(w io.Writer) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *U16) Read(r io.Reader) error {
	var b [2]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = U16(binary.LittleEndian.Uint16(b[:]))

	return nil
}

func (x *U16) Lerp(prev, next *U16, num, den uint64) {
	*x = U16(lerpUnsigned(uint64(*prev), uint64(*next), num, den))
}

func (x *I32) Size() uint64 { return 4 }
func (x *I32) Hash() uint64 { return seedI32 * hashPrime }

func (x *I32) Write(w io.Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *I32) Read(r io.Reader) error {
	var b [4]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = I32(binary.LittleEndian.Uint32(b[:]))

	return nil
}

func (x *I32) Lerp(prev, next *I32, num, den uint64) {
	*x = I32(lerpSigned(int64(*prev), int64(*next), num, den))
}

func (x *U32) Size() uint64 { return 4 }
func (x *U32) Hash() uint64 { return seedU32 * hashPrime }

func (x *U32) Write(w io.Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *U32) Read(r io.Reader) error {
	var b [4]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = U32(binary.LittleEndian.Uint32(b[:]))

	return nil
}

func (x *U32) Lerp(prev, next *U32, num, den uint64) {
	*x = U32(lerpUnsigned(uint64(*prev), uint64(*next), num, den))
}

func (x *I64) Size() uint64 { return 8 }
func (x *I64) Hash() uint64 { return seedI64 * hashPrime }

func (x *I64) Write(w io.Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *I64) Read(r io.Reader) error {
	var b [8]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = I64(binary.LittleEndian.Uint64(b[:]))

	return nil
}

func (x *I64) Lerp(prev, next *I64, num, den uint64) {
	*x = I64(lerpSigned(int64(*prev), int64(*next), num, den))
}

func (x *U64) Size() uint64 { return 8 }
func (x *U64) Hash() uint64 { return seedU64 * hashPrime }

func (x *U64) Write(w io.Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(*x))
	_, err := w.Write(b[:])

	return err
}

func (x *U64) Read(r io.Reader) error {
	var b [8]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = U64(binary.LittleEndian.Uint64(b[:]))

	return nil
}

func (x *U64) Lerp(prev, next *U64, num, den uint64) {
	*x = U64(lerpUnsigned(uint64(*prev), uint64(*next), num, den))
}

func (x *F32) Size() uint64 { return 4 }
func (x *F32) Hash() uint64 { return seedF32 * hashPrime }

func (x *F32) Write(w io.Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(*x)))
	_, err := w.Write(b[:])

	return err
}

func (x *F32) Read(r io.Reader) error {
	var b [4]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = F32(math.Float32frombits(binary.LittleEndian.Uint32(b[:])))

	return nil
}

func (x *F32) Lerp(prev, next *F32, num, den uint64) {
	*x = F32(lerpFloat(float64(*prev), float64(*next), num, den))
}

func (x *F64) Size() uint64 { return 8 }
func (x *F64) Hash() uint64 { return seedF64 * hashPrime }

func (x *F64) Write(w io.Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(float64(*x)))
	_, err := w.Write(b[:])

	return err
}

func (x *F64) Read(r io.Reader) error {
	var b [8]byte
	if err := readFull(r, b[:]); err != nil {
		return err
	}

	*x = F64(math.Float64frombits(binary.LittleEndian.Uint64(b[:])))

	return nil
}

func (x *F64) Lerp(prev, next *F64, num, den uint64) {
	*x = F64(lerpFloat(float64(*prev), float64(*next), num, den))
}
