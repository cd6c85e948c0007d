package rtdb

import (
	"encoding/binary"
	"io"
	"math/big"
)

// I128 is a signed 128-bit datapoint stored as two little-endian
// 64-bit halves, low half first. The value is the two's-complement
// interpretation of Hi<<64 | Lo.
type I128 struct {
	Lo uint64
	Hi uint64
}

// U128 is an unsigned 128-bit datapoint stored as two little-endian
// 64-bit halves, low half first.
type U128 struct {
	Lo uint64
	Hi uint64
}

var (
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	int128  = new(big.Int).Lsh(big.NewInt(1), 127)
	mask64  = new(big.Int).SetUint64(^uint64(0))
	mask128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// halvesToBig returns the unsigned value Hi<<64 | Lo.
func halvesToBig(lo, hi uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)

	return v.Or(v, new(big.Int).SetUint64(lo))
}

// bigToHalves wraps v modulo 2^128 and splits it into halves.
func bigToHalves(v *big.Int) (lo, hi uint64) {
	w := new(big.Int).And(v, mask128)
	lo = new(big.Int).And(w, mask64).Uint64()
	hi = w.Rsh(w, 64).Uint64()

	return lo, hi
}

// lerpBig interpolates p + (n-p)*num/den with truncating division.
func lerpBig(p, n *big.Int, num, den uint64) *big.Int {
	d := new(big.Int).Sub(n, p)
	d.Mul(d, new(big.Int).SetUint64(num))
	d.Quo(d, new(big.Int).SetUint64(den))

	return d.Add(p, d)
}

func write128(w io.Writer, lo, hi uint64) error {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], lo)
	binary.LittleEndian.PutUint64(b[8:], hi)
	_, err := w.Write(b[:])

	return err
}

func read128(r io.Reader) (lo, hi uint64, err error) {
	var b [16]byte
	if err := readFull(r, b[:]); err != nil {
		return 0, 0, err
	}

	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]), nil
}

func (x *I128) Size() uint64 { return 16 }
func (x *I128) Hash() uint64 { return seedI128 * hashPrime }

func (x *I128) Write(w io.Writer) error { return write128(w, x.Lo, x.Hi) }

func (x *I128) Read(r io.Reader) error {
	lo, hi, err := read128(r)
	if err != nil {
		return err
	}

	x.Lo, x.Hi = lo, hi

	return nil
}

// big returns the signed value of x.
func (x *I128) big() *big.Int {
	v := halvesToBig(x.Lo, x.Hi)
	if v.Cmp(int128) >= 0 {
		v.Sub(v, two128)
	}

	return v
}

func (x *I128) Lerp(prev, next *I128, num, den uint64) {
	x.Lo, x.Hi = bigToHalves(lerpBig(prev.big(), next.big(), num, den))
}

func (x *U128) Size() uint64 { return 16 }
func (x *U128) Hash() uint64 { return seedU128 * hashPrime }

func (x *U128) Write(w io.Writer) error { return write128(w, x.Lo, x.Hi) }

func (x *U128) Read(r io.Reader) error {
	lo, hi, err := read128(r)
	if err != nil {
		return err
	}

	x.Lo, x.Hi = lo, hi

	return nil
}

func (x *U128) Lerp(prev, next *U128, num, den uint64) {
	p := halvesToBig(prev.Lo, prev.Hi)
	n := halvesToBig(next.Lo, next.Hi)
	x.Lo, x.Hi = bigToHalves(lerpBig(p, n, num, den))
}
