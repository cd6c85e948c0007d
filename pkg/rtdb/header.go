package rtdb

import (
	"encoding/binary"
	"io"
)

// RTDB file format constants.
const (
	// Magic at the start of every table: "RTDB" as little-endian bytes.
	tableMagic = 0x42445452

	// headerSize is the fixed header length in bytes.
	headerSize = 52
)

// Header field offsets (bytes from stream start).
const (
	offMagic    = 0  // uint32
	offDpSize   = 4  // uint64
	offDpHash   = 12 // uint64
	offDpCount  = 20 // uint64
	offTStart   = 28 // uint64
	offTStep    = 36 // uint64
	offTUpdated = 44 // uint64
)

// header is the fixed prefix of every table. dpSize and dpHash pin the
// record type, dpCount is the ring capacity in slots, tStart is the
// epoch origin of slot 0, tStep the grid quantum, and tUpdated the grid
// time (rounded down) of the most recent successful insert.
type header struct {
	magic    uint32
	dpSize   uint64
	dpHash   uint64
	dpCount  uint64
	tStart   uint64
	tStep    uint64
	tUpdated uint64
}

func newHeader(opts Options, dp Datapoint) header {
	return header{
		magic:    tableMagic,
		dpSize:   dp.Size(),
		dpHash:   dp.Hash(),
		dpCount:  opts.dpCount(),
		tStart:   opts.tStart,
		tStep:    opts.tStep,
		tUpdated: opts.tStart,
	}
}

// encode serializes the header to a 52-byte slice.
func (h *header) encode() []byte {
	buf := make([]byte, headerSize)

	binary.LittleEndian.PutUint32(buf[offMagic:], h.magic)
	binary.LittleEndian.PutUint64(buf[offDpSize:], h.dpSize)
	binary.LittleEndian.PutUint64(buf[offDpHash:], h.dpHash)
	binary.LittleEndian.PutUint64(buf[offDpCount:], h.dpCount)
	binary.LittleEndian.PutUint64(buf[offTStart:], h.tStart)
	binary.LittleEndian.PutUint64(buf[offTStep:], h.tStep)
	binary.LittleEndian.PutUint64(buf[offTUpdated:], h.tUpdated)

	return buf
}

// decodeHeader deserializes a 52-byte slice without validating it.
func decodeHeader(buf []byte) header {
	return header{
		magic:    binary.LittleEndian.Uint32(buf[offMagic:]),
		dpSize:   binary.LittleEndian.Uint64(buf[offDpSize:]),
		dpHash:   binary.LittleEndian.Uint64(buf[offDpHash:]),
		dpCount:  binary.LittleEndian.Uint64(buf[offDpCount:]),
		tStart:   binary.LittleEndian.Uint64(buf[offTStart:]),
		tStep:    binary.LittleEndian.Uint64(buf[offTStep:]),
		tUpdated: binary.LittleEndian.Uint64(buf[offTUpdated:]),
	}
}

// validate checks the header against the caller's options and record
// type.
//
// Possible errors: [ErrInvalidMagic], [ErrInvalidDpSize],
// [ErrInvalidDpHash], [ErrInvalidTimeStep], [ErrInvalidDpCount],
// [ErrInvalidSkip].
func (h *header) validate(opts Options, dp Datapoint) error {
	if h.magic != tableMagic {
		return ErrInvalidMagic
	}

	if h.dpSize == 0 || h.dpSize != dp.Size() {
		return ErrInvalidDpSize
	}

	if !opts.ignoreHash && h.dpHash != dp.Hash() {
		return ErrInvalidDpHash
	}

	if h.tStep == 0 {
		return ErrInvalidTimeStep
	}

	if h.dpCount < 2 {
		return ErrInvalidDpCount
	}

	if opts.maxFwdSkip > h.dpCount-2 {
		return ErrInvalidSkip
	}

	return nil
}

// roundDown quantizes t to the grid point at or below it.
func (h *header) roundDown(t uint64) uint64 {
	d := t - h.tStart
	return h.tStart + d - d%h.tStep
}

// slot maps a time to its ring slot.
func (h *header) slot(t uint64) uint64 {
	elapsed := t - h.tStart
	window := h.tStep * h.dpCount

	return elapsed % window / h.tStep
}

// offset returns the absolute stream offset of a slot.
func (h *header) offset(slot uint64) uint64 {
	return headerSize + slot*h.dpSize
}

// first returns the earliest valid time in the retained window. Before
// the ring wraps this is tStart; afterwards it is the time held by the
// slot just past the last-updated one, which is the slot the next
// insert overwrites.
func (h *header) first() uint64 {
	upd := h.roundDown(h.tUpdated)
	window := h.tStep * h.dpCount

	if upd-h.tStart < window {
		return h.tStart
	}

	return upd - (window - h.tStep)
}

// delta returns the number of grid steps between two times, both
// rounded down first.
func (h *header) delta(a, b uint64) uint64 {
	return h.roundDown(b)/h.tStep - h.roundDown(a)/h.tStep
}

// checkAccess rejects read times outside the retained window.
//
// Possible errors: [ErrOutOfRangeFuture], [ErrOutOfRangePast].
func (h *header) checkAccess(t uint64) error {
	if t > h.tUpdated {
		return ErrOutOfRangeFuture
	}

	if t < h.first() {
		return ErrOutOfRangePast
	}

	return nil
}

// checkStreamLen verifies the backing store's length against the
// header: exactly full once the ring has wrapped, otherwise between
// the currently used prefix and the full length. The store's cursor
// is left at the stream start.
func (h *header) checkStreamLen(s Store) error {
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return ioErr("seek end", err)
	}

	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return ioErr("seek start", err)
	}

	length := uint64(end)
	full := headerSize + h.dpCount*h.dpSize

	if h.first() > h.tStart {
		if length != full {
			return ErrInvalidStreamLen
		}

		return nil
	}

	used := headerSize + (h.slot(h.tUpdated)+1)*h.dpSize
	if length < used || length > full {
		return ErrInvalidStreamLen
	}

	return nil
}
