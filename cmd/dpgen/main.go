// dpgen generates datapoint method sets for struct record types.
//
// Given a package directory and one or more struct type names whose
// fields are themselves datapoints (the rtdb primitives, other
// datapoint structs, or fixed-size arrays of either), dpgen emits a
// sibling file implementing Size, Hash, Write, Read, and Lerp for each
// type. Intended for use with go:generate:
//
//	//go:generate go run github.com/calvinalkan/roundtable/cmd/dpgen -t MemInfo
//
// Usage:
//
//	dpgen -t TypeA[,TypeB...] [-d dir] [-o output.go]
//
// Options:
//
//	-t, --type      Comma-separated struct type names (required)
//	-d, --dir       Package directory to scan (default ".")
//	-o, --output    Output file (default <dir>/datapoint_gen.go)
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dpgen: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	typeNames := pflag.StringSliceP("type", "t", nil, "struct type names to generate for")
	dir := pflag.StringP("dir", "d", ".", "package directory to scan")
	output := pflag.StringP("output", "o", "", "output file (default <dir>/datapoint_gen.go)")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dpgen -t TypeA[,TypeB...] [-d dir] [-o output.go]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if len(*typeNames) == 0 {
		pflag.Usage()
		return errNoTypes
	}

	src, err := generate(*dir, *typeNames)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = filepath.Join(*dir, "datapoint_gen.go")
	}

	if err := atomic.WriteFile(out, bytes.NewReader(src)); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	return nil
}
