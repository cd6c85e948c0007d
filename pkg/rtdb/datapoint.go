package rtdb

import "io"

// Datapoint is the structural contract every stored record satisfies.
//
// A datapoint is a fixed-size, bit-reproducible record: its serialized
// form is the little-endian concatenation of its leaf fields in
// declaration order, with no padding, alignment, or framing.
//
// The primitive types in this package implement the contract directly.
// Struct records composed of datapoint fields acquire it through the
// dpgen generator or through hand-written methods; either way, the
// method bodies are pure field traversals, so hand-written and
// generated implementations are interchangeable.
type Datapoint interface {
	// Size returns the serialized width in bytes.
	Size() uint64

	// Hash returns the 64-bit schema fingerprint.
	//
	// The fingerprint is a function of the flat leaf-type sequence
	// alone: each primitive kind contributes its seed mixed with
	// hashPrime, and composites multiply their leaves' contributions
	// with wrapping 64-bit arithmetic starting from 1. Two records
	// with the same ordered leaf sequence hash identically no matter
	// how the leaves are grouped into nested records or arrays.
	Hash() uint64

	// Write emits the record as little-endian bytes in declaration
	// order, recursively.
	Write(w io.Writer) error

	// Read consumes exactly Size() bytes and populates the record
	// in place.
	Read(r io.Reader) error
}

// Datapointer constrains the pointer form of a record type T to the
// datapoint contract plus per-field linear interpolation. The engine
// is generic over it so that scratch records can be allocated as
// zero values and populated through their pointer methods.
type Datapointer[T any] interface {
	*T
	Datapoint

	// Lerp sets the receiver to prev + (next-prev)*num/den, applied
	// to every leaf numeric field. Integer leaves round toward zero.
	Lerp(prev, next *T, num, den uint64)
}

// hashPrime mixes each primitive seed into its hash contribution.
const hashPrime = 0x100000001b3

// Primitive hash seeds. Each primitive kind contributes
// seed * hashPrime to its record's schema fingerprint.
const (
	seedI8   = 1087
	seedU8   = 3119
	seedI16  = 4909
	seedU16  = 6113
	seedI32  = 8191
	seedU32  = 18181
	seedI64  = 21169
	seedU64  = 37199
	seedI128 = 60493
	seedU128 = 93911
	seedF32  = 131071
	seedF64  = 524287
)
