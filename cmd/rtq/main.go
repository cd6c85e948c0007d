// rtq is a read-only inspector for roundtable files.
//
// Usage:
//
//	rtq [--type T] <table-file>
//
// Options:
//
//	-t, --type   Decode slots as a single primitive: i8, u8, i16, u16,
//	             i32, u32, i64, u64, f32, f64. Without it, slots are
//	             shown as hex.
//
// Commands (in REPL):
//
//	info                 Show header fields and sizes
//	get <t>              Show the sample for time t
//	first                Show the oldest retained sample
//	last                 Show the most recent sample
//	range <start> <end>  Show every sample in [start, end]
//	digest               xxhash64 of the ring body
//	type [T]             Show or change the slot decoding
//	help                 Show this help
//	exit / quit / q      Exit
package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/cespare/xxhash/v2"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"
)

// Header layout of a roundtable file (matches the rtdb format).
const (
	rtdbMagic       = 0x42445452
	rtdbHeaderSize  = 52
	rtdbOffMagic    = 0
	rtdbOffDpSize   = 4
	rtdbOffDpHash   = 12
	rtdbOffDpCount  = 20
	rtdbOffTStart   = 28
	rtdbOffTStep    = 36
	rtdbOffTUpdated = 44
)

// primWidths maps the decodable primitive names to their byte widths.
var primWidths = map[string]uint64{
	"i8": 1, "u8": 1,
	"i16": 2, "u16": 2,
	"i32": 4, "u32": 4, "f32": 4,
	"i64": 8, "u64": 8, "f64": 8,
}

// tableInfo is the header of an open table file plus its file size.
type tableInfo struct {
	dpSize   uint64
	dpHash   uint64
	dpCount  uint64
	tStart   uint64
	tStep    uint64
	tUpdated uint64
	fileSize int64
}

func readTableInfo(f *os.File) (tableInfo, error) {
	st, err := f.Stat()
	if err != nil {
		return tableInfo{}, fmt.Errorf("stat: %w", err)
	}

	if st.Size() < rtdbHeaderSize {
		return tableInfo{}, fmt.Errorf("file too small: %d bytes", st.Size())
	}

	header := make([]byte, rtdbHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		return tableInfo{}, fmt.Errorf("reading header: %w", err)
	}

	if binary.LittleEndian.Uint32(header[rtdbOffMagic:]) != rtdbMagic {
		return tableInfo{}, errors.New("invalid magic: not a roundtable file")
	}

	info := tableInfo{
		dpSize:   binary.LittleEndian.Uint64(header[rtdbOffDpSize:]),
		dpHash:   binary.LittleEndian.Uint64(header[rtdbOffDpHash:]),
		dpCount:  binary.LittleEndian.Uint64(header[rtdbOffDpCount:]),
		tStart:   binary.LittleEndian.Uint64(header[rtdbOffTStart:]),
		tStep:    binary.LittleEndian.Uint64(header[rtdbOffTStep:]),
		tUpdated: binary.LittleEndian.Uint64(header[rtdbOffTUpdated:]),
		fileSize: st.Size(),
	}

	if info.dpSize == 0 || info.dpCount == 0 || info.tStep == 0 {
		return tableInfo{}, errors.New("corrupt header geometry")
	}

	return info, nil
}

func (i tableInfo) roundDown(t uint64) uint64 {
	d := t - i.tStart
	return i.tStart + d - d%i.tStep
}

func (i tableInfo) slot(t uint64) uint64 {
	return (t - i.tStart) % (i.tStep * i.dpCount) / i.tStep
}

func (i tableInfo) offset(slot uint64) int64 {
	return rtdbHeaderSize + int64(slot*i.dpSize)
}

func (i tableInfo) first() uint64 {
	upd := i.roundDown(i.tUpdated)
	window := i.tStep * i.dpCount

	if upd-i.tStart < window {
		return i.tStart
	}

	return upd - (window - i.tStep)
}

func (i tableInfo) checkAccess(t uint64) error {
	if t > i.tUpdated {
		return fmt.Errorf("time %d is after the last update (%d)", t, i.tUpdated)
	}

	if t < i.first() {
		return fmt.Errorf("time %d precedes the oldest retained sample (%d)", t, i.first())
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	typ := pflag.StringP("type", "t", "", "decode slots as this primitive")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rtq [--type T] <table-file>\n\n")
		fmt.Fprintf(os.Stderr, "Open a roundtable file for inspection.\n\nOptions:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() < 1 {
		pflag.Usage()
		return errors.New("missing table file path")
	}

	path := pflag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening table: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := readTableInfo(f)
	if err != nil {
		return err
	}

	if *typ != "" {
		if err := checkDecodeType(info, *typ); err != nil {
			return err
		}
	}

	repl := &REPL{file: f, info: info, typ: *typ, path: path}

	return repl.Run()
}

func checkDecodeType(info tableInfo, typ string) error {
	width, ok := primWidths[typ]
	if !ok {
		return fmt.Errorf("unknown type %q", typ)
	}

	if width != info.dpSize {
		return fmt.Errorf("type %s is %d bytes but slots are %d bytes", typ, width, info.dpSize)
	}

	return nil
}

// REPL is the interactive command loop.
type REPL struct {
	file  *os.File
	info  tableInfo
	typ   string
	path  string
	liner *liner.State
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".rtq_history")
}

var replCommands = []string{
	"info", "get ", "first", "last", "range ", "digest", "type ", "help", "exit", "quit",
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer func() { _ = r.liner.Close() }()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(func(line string) []string {
		var out []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}

		return out
	})

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Printf("rtq - roundtable inspector (%s, dp_size=%d, slots=%d)\n",
		r.path, r.info.dpSize, r.info.dpCount)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("rtq> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		if done := r.dispatch(line); done {
			break
		}
	}

	if f, err := os.Create(historyFile()); err == nil {
		_, _ = r.liner.WriteHistory(f)
		_ = f.Close()
	}

	return nil
}

// dispatch runs one command line. Returns true to exit.
func (r *REPL) dispatch(line string) bool {
	args := strings.Fields(line)
	cmd := strings.ToLower(args[0])

	var err error

	switch cmd {
	case "exit", "quit", "q":
		fmt.Println("Bye!")
		return true
	case "help":
		r.printHelp()
	case "info":
		r.cmdInfo()
	case "get":
		err = r.cmdGet(args[1:])
	case "first":
		err = r.cmdShow(r.info.first())
	case "last":
		err = r.cmdShow(r.info.tUpdated)
	case "range":
		err = r.cmdRange(args[1:])
	case "digest":
		err = r.cmdDigest()
	case "type":
		err = r.cmdType(args[1:])
	default:
		fmt.Printf("unknown command %q (try 'help')\n", cmd)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
	}

	return false
}

func (r *REPL) printHelp() {
	fmt.Print(`Commands:
  info                 Show header fields and sizes
  get <t>              Show the sample for time t
  first                Show the oldest retained sample
  last                 Show the most recent sample
  range <start> <end>  Show every sample in [start, end]
  digest               xxhash64 of the ring body
  type [T]             Show or change the slot decoding
  help                 Show this help
  exit / quit / q      Exit
`)
}

func (r *REPL) cmdInfo() {
	i := r.info
	bodySize := datasize.ByteSize(i.dpCount * i.dpSize)
	fullSize := datasize.ByteSize(uint64(rtdbHeaderSize) + i.dpCount*i.dpSize)

	fmt.Printf("  dp_size:    %d bytes\n", i.dpSize)
	fmt.Printf("  dp_hash:    %#016x\n", i.dpHash)
	fmt.Printf("  dp_count:   %d slots\n", i.dpCount)
	fmt.Printf("  t_start:    %d\n", i.tStart)
	fmt.Printf("  t_step:     %d\n", i.tStep)
	fmt.Printf("  t_updated:  %d\n", i.tUpdated)
	fmt.Printf("  first:      %d\n", i.first())
	fmt.Printf("  body:       %s\n", bodySize.HumanReadable())
	fmt.Printf("  full size:  %s (file is %s)\n",
		fullSize.HumanReadable(), datasize.ByteSize(i.fileSize).HumanReadable())
}

func (r *REPL) cmdGet(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <t>")
	}

	t, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad time %q", args[0])
	}

	return r.cmdShow(t)
}

func (r *REPL) cmdShow(t uint64) error {
	if err := r.info.checkAccess(t); err != nil {
		return err
	}

	v, err := r.readSlot(t)
	if err != nil {
		return err
	}

	fmt.Printf("  %d: %s\n", r.info.roundDown(t), v)

	return nil
}

func (r *REPL) cmdRange(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: range <start> <end>")
	}

	start, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad time %q", args[0])
	}

	end, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad time %q", args[1])
	}

	if err := r.info.checkAccess(start); err != nil {
		return err
	}

	if err := r.info.checkAccess(end); err != nil {
		return err
	}

	for t := r.info.roundDown(start); t <= r.info.roundDown(end); t += r.info.tStep {
		v, err := r.readSlot(t)
		if err != nil {
			return err
		}

		fmt.Printf("  %d: %s\n", t, v)
	}

	return nil
}

func (r *REPL) cmdDigest() error {
	if _, err := r.file.Seek(rtdbHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	h := xxhash.New()
	if _, err := io.Copy(h, r.file); err != nil {
		return fmt.Errorf("hashing body: %w", err)
	}

	fmt.Printf("  xxhash64: %016x\n", h.Sum64())

	return nil
}

func (r *REPL) cmdType(args []string) error {
	if len(args) == 0 {
		if r.typ == "" {
			fmt.Println("  decoding: hex")
		} else {
			fmt.Printf("  decoding: %s\n", r.typ)
		}

		return nil
	}

	if args[0] == "hex" {
		r.typ = ""
		return nil
	}

	if err := checkDecodeType(r.info, args[0]); err != nil {
		return err
	}

	r.typ = args[0]

	return nil
}

// readSlot reads and decodes the slot holding time t.
func (r *REPL) readSlot(t uint64) (string, error) {
	buf := make([]byte, r.info.dpSize)

	if _, err := r.file.ReadAt(buf, r.info.offset(r.info.slot(t))); err != nil {
		return "", fmt.Errorf("reading slot: %w", err)
	}

	return decodeValue(buf, r.typ), nil
}

// decodeValue renders slot bytes per the configured primitive, or as
// hex when none is set.
func decodeValue(b []byte, typ string) string {
	switch typ {
	case "i8":
		return strconv.FormatInt(int64(int8(b[0])), 10)
	case "u8":
		return strconv.FormatUint(uint64(b[0]), 10)
	case "i16":
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10)
	case "u16":
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(b)), 10)
	case "i32":
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10)
	case "u32":
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b)), 10)
	case "i64":
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10)
	case "u64":
		return strconv.FormatUint(binary.LittleEndian.Uint64(b), 10)
	case "f32":
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), 'g', -1, 32)
	case "f64":
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)), 'g', -1, 64)
	}

	return hex.EncodeToString(b)
}
