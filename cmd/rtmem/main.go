// rtmem samples /proc/meminfo into a roundtable ring and renders the
// retained window as an HTML line chart.
//
// Usage:
//
//	rtmem [options]
//
// Options:
//
//	-c, --config    HuJSON config file (default .rtmem.json)
//	-n, --samples   Number of samples to record
//	-s, --step      Seconds between samples
//	-f, --file      Persist the ring to this file instead of memory
//	-o, --out       Chart output path
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/calvinalkan/roundtable/pkg/rtdb"
)

const defaultConfigFile = ".rtmem.json"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rtmem: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", defaultConfigFile, "HuJSON config file")
	samples := pflag.IntP("samples", "n", 0, "number of samples to record")
	step := pflag.Uint64P("step", "s", 0, "seconds between samples")
	file := pflag.StringP("file", "f", "", "persist the ring to this file instead of memory")
	out := pflag.StringP("out", "o", "", "chart output path")
	pflag.Parse()

	explicit := pflag.CommandLine.Changed("config")

	cfg, err := LoadConfig(*configPath, explicit)
	if err != nil {
		return err
	}

	cfg = mergeConfig(cfg, Config{
		StepSeconds: *step,
		Samples:     *samples,
		TablePath:   *file,
		ChartPath:   *out,
	})

	if cfg.WindowSeconds < 2*cfg.StepSeconds {
		return errors.New("window must cover at least two steps")
	}

	table, err := record(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = table.Close() }()

	if err := renderChart(table, cfg.ChartPath); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", cfg.ChartPath)

	return nil
}

// record samples /proc/meminfo on the configured grid. Slot 0 is the
// sample taken at startup; gaps from slow ticks are snapped to the
// nearest neighbor.
func record(cfg Config) (*memTable, error) {
	opts := rtdb.NewOptions(0, cfg.StepSeconds, cfg.WindowSeconds).
		MaxFwdSkip(4).
		FwdSkipMode(rtdb.SkipNearest).
		Overwrite(true)

	first, err := readMemInfo()
	if err != nil {
		return nil, fmt.Errorf("reading /proc/meminfo: %w", err)
	}

	var table *memTable

	if cfg.TablePath != "" {
		table, err = rtdb.CreateFile(opts, first, cfg.TablePath)
	} else {
		table, err = rtdb.NewMemory(opts, first)
	}

	if err != nil {
		return nil, fmt.Errorf("creating table: %w", err)
	}

	start := time.Now()
	tick := time.NewTicker(time.Duration(cfg.StepSeconds) * time.Second)
	defer tick.Stop()

	for n := 0; n < cfg.Samples; n++ {
		<-tick.C

		mi, err := readMemInfo()
		if err != nil {
			fmt.Fprintf(os.Stderr, "rtmem: sample skipped: %v\n", err)
			continue
		}

		elapsed := uint64(time.Since(start).Seconds())
		if err := table.Insert(elapsed, mi); err != nil {
			_ = table.Close()
			return nil, fmt.Errorf("inserting sample at %ds: %w", elapsed, err)
		}
	}

	return table, nil
}
