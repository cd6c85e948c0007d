package rtdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestZeroedFill(t *testing.T) {
	opts := NewOptions(100, 10, 500).
		MaxFwdSkip(8).
		FwdSkipMode(SkipZeroed)

	tb := newMem(t, opts, I32(0))

	mustInsert(t, tb, 110, I32(1))
	mustInsert(t, tb, 120, I32(2))
	mustInsert(t, tb, 150, I32(5))
	mustInsert(t, tb, 190, I32(9))
	mustInsert(t, tb, 240, I32(14))

	want := map[uint64]I32{
		100: 0, 110: 1, 120: 2, 130: 0, 140: 0,
		150: 5, 160: 0, 170: 0, 180: 0, 190: 9,
		200: 0, 210: 0, 220: 0, 230: 0, 240: 14,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}
}

func TestNearestFill(t *testing.T) {
	opts := NewOptions(0, 10, 160).
		MaxFwdSkip(8).
		FwdSkipMode(SkipNearest)

	tb := newMem(t, opts, I32(0))

	mustInsert(t, tb, 10, I32(1))
	mustInsert(t, tb, 30, I32(3))
	mustInsert(t, tb, 60, I32(6))
	mustInsert(t, tb, 100, I32(10))
	mustInsert(t, tb, 140, I32(14))

	want := map[uint64]I32{
		10: 1, 20: 3, 30: 3, 40: 3, 50: 6, 60: 6, 70: 6,
		80: 10, 90: 10, 100: 10, 110: 10, 120: 14, 130: 14, 140: 14,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}
}

func TestLinearFillInt(t *testing.T) {
	opts := NewOptions(0, 10, 160).
		MaxFwdSkip(8).
		FwdSkipMode(SkipLinear)

	tb := newMem(t, opts, I32(0))

	mustInsert(t, tb, 10, I32(10))
	mustInsert(t, tb, 40, I32(40))
	mustInsert(t, tb, 80, I32(60))

	want := map[uint64]I32{
		10: 10, 20: 20, 30: 30, 40: 40,
		50: 45, 60: 50, 70: 55, 80: 60,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}
}

func TestLinearFillFloat(t *testing.T) {
	opts := NewOptions(0, 10, 160).
		MaxFwdSkip(8).
		FwdSkipMode(SkipLinear)

	tb := newMem(t, opts, F64(0))

	mustInsert(t, tb, 40, F64(1.0))
	mustInsert(t, tb, 80, F64(3.0))

	want := map[uint64]F64{
		0: 0, 10: 0.25, 20: 0.5, 30: 0.75,
		40: 1.0, 50: 1.5, 60: 2.0, 70: 2.5, 80: 3.0,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %v, want %v", tm, got, v)
		}
	}
}

func TestLinearFillComposite(t *testing.T) {
	opts := NewOptions(0, 10, 160).
		MaxFwdSkip(8).
		FwdSkipMode(SkipLinear)

	tb := newMem(t, opts, pair{})

	mustInsert(t, tb, 10, pair{A: 10, B: 100})
	mustInsert(t, tb, 40, pair{A: 40, B: 40})

	if got := mustGet(t, tb, 20); got != (pair{A: 20, B: 80}) {
		t.Errorf("Get(20) = %+v", got)
	}

	if got := mustGet(t, tb, 30); got != (pair{A: 30, B: 60}) {
		t.Errorf("Get(30) = %+v", got)
	}
}

func TestTimeErrors(t *testing.T) {
	opts := NewOptions(1000, 100, 1000).
		MaxFwdSkip(3).
		FwdSkipMode(SkipZeroed)

	tb := newMem(t, opts, I64(1))

	if err := tb.Insert(999, 1); !errors.Is(err, ErrUpdateTooEarly) {
		t.Errorf("Insert(999): got %v, want ErrUpdateTooEarly", err)
	}

	if err := tb.Insert(9999, 1); !errors.Is(err, ErrUpdateTooLate) {
		t.Errorf("Insert(9999): got %v, want ErrUpdateTooLate", err)
	}

	mustInsert(t, tb, 1100, I64(100))
	mustInsert(t, tb, 1200, I64(200))
	mustInsert(t, tb, 1400, I64(400))

	if err := tb.Insert(1900, 900); !errors.Is(err, ErrMaxSkipExceeded) {
		t.Errorf("Insert(1900): got %v, want ErrMaxSkipExceeded", err)
	}

	mustInsert(t, tb, 1800, I64(800))
	mustInsert(t, tb, 2100, I64(210))

	if _, err := tb.Get(999); !errors.Is(err, ErrOutOfRangePast) {
		t.Errorf("Get(999): got %v, want ErrOutOfRangePast", err)
	}

	if _, err := tb.Get(1100); !errors.Is(err, ErrOutOfRangePast) {
		t.Errorf("Get(1100): got %v, want ErrOutOfRangePast", err)
	}

	if _, err := tb.Get(1199); !errors.Is(err, ErrOutOfRangePast) {
		t.Errorf("Get(1199): got %v, want ErrOutOfRangePast", err)
	}

	if got := mustGet(t, tb, 1200); got != 200 {
		t.Errorf("Get(1200) = %d, want 200", got)
	}

	if got := mustGet(t, tb, 2100); got != 210 {
		t.Errorf("Get(2100) = %d, want 210", got)
	}

	if _, err := tb.Get(2101); !errors.Is(err, ErrOutOfRangeFuture) {
		t.Errorf("Get(2101): got %v, want ErrOutOfRangeFuture", err)
	}
}

func TestBoundaryValues(t *testing.T) {
	opts := NewOptions(0, 100, 1000).
		MaxFwdSkip(7).
		FwdSkipMode(SkipZeroed)

	tb := newMem(t, opts, I64(0))

	mustInsert(t, tb, 150, I64(1))
	mustInsert(t, tb, 250, I64(2))
	mustInsert(t, tb, 350, I64(3))

	want := map[uint64]I64{
		0: 0, 99: 0, 100: 1, 199: 1, 200: 2, 299: 2, 300: 3,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}

	mustInsert(t, tb, 950, I64(9))
	mustInsert(t, tb, 1050, I64(10))
	mustInsert(t, tb, 1100, I64(11))

	want = map[uint64]I64{
		900: 9, 999: 9, 1000: 10, 1099: 10,
	}

	for tm, v := range want {
		if got := mustGet(t, tb, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}
}

func TestInsertMonotonicity(t *testing.T) {
	opts := NewOptions(0, 10, 100)
	tb := newMem(t, opts, I32(0))

	// Raw insert times are quantized down to the grid.
	mustInsert(t, tb, 17, I32(7))

	if got := tb.header.tUpdated; got != 10 {
		t.Errorf("tUpdated = %d, want 10", got)
	}

	if got := mustGet(t, tb, 10); got != 7 {
		t.Errorf("Get(10) = %d, want 7", got)
	}

	// A second insert on the same grid point fails even though the
	// raw time advanced.
	if err := tb.Insert(19, 9); !errors.Is(err, ErrUpdateTooEarly) {
		t.Errorf("Insert(19): got %v, want ErrUpdateTooEarly", err)
	}
}

func TestRingEviction(t *testing.T) {
	opts := NewOptions(0, 10, 40) // 4 slots
	tb := newMem(t, opts, I32(0))

	for i := uint64(1); i <= 6; i++ {
		mustInsert(t, tb, i*10, I32(i))
	}

	// Window now covers [30, 60]; everything earlier is evicted.
	for _, tm := range []uint64{0, 10, 20, 29} {
		if _, err := tb.Get(tm); !errors.Is(err, ErrOutOfRangePast) {
			t.Errorf("Get(%d): got %v, want ErrOutOfRangePast", tm, err)
		}
	}

	for i := uint64(3); i <= 6; i++ {
		if got := mustGet(t, tb, i*10); got != I32(i) {
			t.Errorf("Get(%d) = %d, want %d", i*10, got, i)
		}
	}
}

func TestDoNothingFillPreallocated(t *testing.T) {
	opts := NewOptions(0, 10, 100).
		Preallocate(true).
		MaxFwdSkip(5).
		FwdSkipMode(SkipDoNothing)

	tb := newMem(t, opts, I32(0))

	mustInsert(t, tb, 40, I32(4))

	// Skipped slots keep their preallocated zero bytes.
	for _, tm := range []uint64{10, 20, 30} {
		if got := mustGet(t, tb, tm); got != 0 {
			t.Errorf("Get(%d) = %d, want 0", tm, got)
		}
	}

	if got := mustGet(t, tb, 40); got != 4 {
		t.Errorf("Get(40) = %d, want 4", got)
	}
}

func TestPartialLoad(t *testing.T) {
	opts := NewOptions(0, 100, 12000)
	tb := newMem(t, opts, I16(0))

	mustInsert(t, tb, 100, I16(1000))
	mustInsert(t, tb, 200, I16(2000))
	mustInsert(t, tb, 300, I16(3000))

	buf, ok := tb.IntoInner().(*Buffer)
	if !ok {
		t.Fatal("IntoInner did not return the original buffer")
	}

	tb2, err := LoadBuffer[I16](opts, buf.Bytes())
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	for tm, v := range map[uint64]I16{100: 1000, 200: 2000, 300: 3000} {
		if got := mustGet(t, tb2, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}

	// A truncated partial image fails the stream-length check.
	img := tb2.IntoInner().(*Buffer).Bytes()
	if _, err := LoadBuffer[I16](opts, img[:len(img)-1]); !errors.Is(err, ErrInvalidStreamLen) {
		t.Errorf("truncated load: got %v, want ErrInvalidStreamLen", err)
	}
}

func TestFullLoad(t *testing.T) {
	opts := NewOptions(0, 100, 1000)
	tb := newMem(t, opts, I32(0))

	for i := uint64(1); i <= 10; i++ {
		mustInsert(t, tb, i*100, I32(i*10000))
	}

	img := tb.IntoInner().(*Buffer).Bytes()

	tb2, err := LoadBuffer[I32](opts, img)
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	for tm, v := range map[uint64]I32{1000: 100000, 200: 20000, 300: 30000} {
		if got := mustGet(t, tb2, tm); got != v {
			t.Errorf("Get(%d) = %d, want %d", tm, got, v)
		}
	}

	// A wrapped ring must be exactly full length.
	img = tb2.IntoInner().(*Buffer).Bytes()
	if _, err := LoadBuffer[I32](opts, img[:len(img)-1]); !errors.Is(err, ErrInvalidStreamLen) {
		t.Errorf("truncated load: got %v, want ErrInvalidStreamLen", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	opts := NewOptions(47029931, 129, 1161) // 9 slots

	tb := newMem(t, opts, I64(-1))

	times := make([]uint64, 9)
	for i := range times {
		times[i] = 47030060 + uint64(i)*129
		mustInsert(t, tb, times[i], I64(i*1000))
	}

	img := tb.IntoInner().(*Buffer).Bytes()

	tb2, err := LoadBuffer[I64](opts, img)
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	firstT, firstV, err := tb2.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}

	if firstT != 47030060 || firstV != 0 {
		t.Errorf("First() = (%d, %d), want (47030060, 0)", firstT, firstV)
	}

	lastT, lastV, err := tb2.Last()
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	if lastT != 47031092 || lastV != 8000 {
		t.Errorf("Last() = (%d, %d), want (47031092, 8000)", lastT, lastV)
	}

	for i, tm := range times {
		if got := mustGet(t, tb2, tm); got != I64(i*1000) {
			t.Errorf("Get(%d) = %d, want %d", tm, got, i*1000)
		}
	}
}

func TestLoadRejectsWrongType(t *testing.T) {
	opts := NewOptions(0, 10, 100)
	tb := newMem(t, opts, I32(0))

	img := tb.IntoInner().(*Buffer).Bytes()

	// Same width, different leaf kind.
	if _, err := LoadBuffer[U32](opts, img); !errors.Is(err, ErrInvalidDpHash) {
		t.Errorf("got %v, want ErrInvalidDpHash", err)
	}

	if _, err := LoadBuffer[U32](opts.IgnoreHash(true), img); err != nil {
		t.Errorf("IgnoreHash load: %v", err)
	}

	if _, err := LoadBuffer[I64](opts, img); !errors.Is(err, ErrInvalidDpSize) {
		t.Errorf("got %v, want ErrInvalidDpSize", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	opts := NewOptions(0, 10, 100)

	if _, err := LoadBuffer[I32](opts, make([]byte, headerSize+40)); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("zero header: got %v, want ErrInvalidMagic", err)
	}

	if _, err := LoadBuffer[I32](opts, []byte{1, 2, 3}); !errors.Is(err, ErrIO) {
		t.Errorf("short stream: got %v, want ErrIO", err)
	}
}

func TestCreateValidation(t *testing.T) {
	if _, err := NewMemory(NewOptions(0, 0, 100), I32(0)); !errors.Is(err, ErrInvalidTimeStep) {
		t.Errorf("zero step: got %v", err)
	}

	if _, err := NewMemory(NewOptions(0, 100, 100), I32(0)); !errors.Is(err, ErrInvalidDpCount) {
		t.Errorf("single slot: got %v", err)
	}

	if _, err := NewMemory(NewOptions(0, 10, 100).MaxFwdSkip(9), I32(0)); !errors.Is(err, ErrInvalidSkip) {
		t.Errorf("oversized skip: got %v", err)
	}
}

func TestClosedTable(t *testing.T) {
	tb := newMem(t, NewOptions(0, 10, 100), I32(0))

	_ = tb.IntoInner()

	if err := tb.Insert(10, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Insert after IntoInner: got %v, want ErrClosed", err)
	}

	if _, err := tb.Get(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after IntoInner: got %v, want ErrClosed", err)
	}

	if _, err := tb.Iter(); !errors.Is(err, ErrClosed) {
		t.Errorf("Iter after IntoInner: got %v, want ErrClosed", err)
	}

	if err := tb.Close(); err != nil {
		t.Errorf("Close after IntoInner: %v", err)
	}
}

// brokenStore fails every write after the first n, exercising the
// engine's I/O error surfacing.
type brokenStore struct {
	inner      Store
	writesLeft int
}

var errBroken = errors.New("broken store")

func (s *brokenStore) Read(p []byte) (int, error) { return s.inner.Read(p) }

func (s *brokenStore) Seek(offset int64, whence int) (int64, error) {
	return s.inner.Seek(offset, whence)
}

func (s *brokenStore) Write(p []byte) (int, error) {
	if s.writesLeft <= 0 {
		return 0, errBroken
	}

	s.writesLeft--

	return s.inner.Write(p)
}

func TestIOErrorSurfaced(t *testing.T) {
	opts := NewOptions(0, 10, 100)

	store := &brokenStore{inner: NewBuffer(nil), writesLeft: 2}

	tb, err := New[I32](opts, I32(0), store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = tb.Insert(10, 1)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("got %v, want ErrIO", err)
	}

	if !errors.Is(err, errBroken) {
		t.Errorf("underlying cause lost: %v", err)
	}
}

func TestPersistenceReplayEquivalence(t *testing.T) {
	// Any in-memory state, serialized and reloaded, answers every
	// retained get identically.
	opts := NewOptions(0, 5, 125).
		MaxFwdSkip(10).
		FwdSkipMode(SkipNearest)

	tb := newMem(t, opts, pair{A: 1, B: -1})

	for _, in := range []struct {
		tm uint64
		v  pair
	}{
		{5, pair{A: 2, B: -2}},
		{20, pair{A: 5, B: -5}},
		{45, pair{A: 9, B: -9}},
		{50, pair{A: 10, B: -10}},
	} {
		mustInsert(t, tb, in.tm, in.v)
	}

	type sample struct {
		tm uint64
		v  pair
	}

	var want []sample

	it, err := tb.Iter()
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}

	for it.Next() {
		want = append(want, sample{it.Time(), it.Value()})
	}

	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	img := tb.IntoInner().(*Buffer).Bytes()

	tb2, err := LoadBuffer[pair](opts, img)
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	var got []sample

	it2, err := tb2.Iter()
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}

	for it2.Next() {
		got = append(got, sample{it2.Time(), it2.Value()})
	}

	if err := it2.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(sample{})); diff != "" {
		t.Errorf("replay mismatch (-want +got):\n%s", diff)
	}
}

func ExampleTable_Insert() {
	opts := NewOptions(0, 10, 100).
		MaxFwdSkip(4).
		FwdSkipMode(SkipLinear)

	tb, err := NewMemory(opts, F64(0))
	if err != nil {
		panic(err)
	}

	_ = tb.Insert(40, F64(2.0))

	v, _ := tb.Get(20)
	fmt.Println(v)
	// Output: 1
}
