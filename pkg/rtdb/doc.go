// Package rtdb implements an embedded round-robin time-series table.
//
// A table is a fixed-size ring of slots backed by a random-access byte
// stream (an in-memory [Buffer] or an [os.File]). Each slot holds one
// fixed-width sample on a regular time grid; once the ring has wrapped,
// every insert evicts the oldest retained sample.
//
// # Basic Usage
//
//	opts := rtdb.NewOptions(0, 10, 600).
//	    MaxFwdSkip(8).
//	    FwdSkipMode(rtdb.SkipLinear)
//
//	table, err := rtdb.NewMemory(opts, rtdb.F64(0))
//	if err != nil {
//	    // handle validation errors via errors.Is
//	}
//
//	err = table.Insert(10, rtdb.F64(1.5))
//	v, err := table.Get(10)
//
// Samples are any type satisfying the [Datapoint] contract: a byte size,
// a schema hash, and little-endian serialization. The primitive types
// ([I8] through [U128], [F32], [F64]) satisfy it out of the box; struct
// records composed of datapoint fields acquire it through the dpgen
// generator (see cmd/dpgen) or through hand-written methods.
//
// # Gap Filling
//
// When successive inserts are more than one grid step apart, the slots
// in between are filled according to [Options.FwdSkipMode]: left as-is
// ([SkipDoNothing]), zeroed ([SkipZeroed]), snapped to the nearest
// neighbor ([SkipNearest]), or linearly interpolated field by field
// ([SkipLinear]).
//
// # Concurrency
//
// A table owns its backing store outright and is not safe for concurrent
// use. Iterators returned by [Table.Iter] and [Table.Range] advance the
// table's cursor; no other operation may be invoked on the table while an
// iterator is live.
//
// # Error Handling
//
// All failures are returned as values and classified with errors.Is
// against the package sentinels ([ErrUpdateTooEarly], [ErrOutOfRangePast],
// ...). Backing-store failures wrap both [ErrIO] and the underlying
// error. After an I/O failure the table's cursor state is unknown;
// callers should discard the table and reload.
package rtdb
