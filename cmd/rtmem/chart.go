package main

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/natefinch/atomic"

	"github.com/calvinalkan/roundtable/pkg/rtdb"
)

// memTable is the concrete table type storing MemInfo samples.
type memTable = rtdb.Table[MemInfo, *MemInfo]

// seriesNames in chart order.
var seriesNames = []string{"MemTotal", "MemFree", "MemAvailable", "Buffers", "Cached"}

// renderChart draws the retained window as an HTML line chart and
// writes it atomically to path.
func renderChart(table *memTable, path string) error {
	var times []string

	series := make(map[string][]opts.LineData, len(seriesNames))

	it, err := table.Iter()
	if err != nil {
		return fmt.Errorf("iterating table: %w", err)
	}

	for it.Next() {
		v := it.Value()

		times = append(times, fmt.Sprintf("%ds", it.Time()))
		series["MemTotal"] = append(series["MemTotal"], opts.LineData{Value: uint32(v.Total)})
		series["MemFree"] = append(series["MemFree"], opts.LineData{Value: uint32(v.Free)})
		series["MemAvailable"] = append(series["MemAvailable"], opts.LineData{Value: uint32(v.Avail)})
		series["Buffers"] = append(series["Buffers"], opts.LineData{Value: uint32(v.Buffers)})
		series["Cached"] = append(series["Cached"], opts.LineData{Value: uint32(v.Cached)})
	}

	if err := it.Err(); err != nil {
		return fmt.Errorf("iterating table: %w", err)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Meminfo"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "s"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "KiB"}),
	)

	line.SetXAxis(times)

	for _, name := range seriesNames {
		line.AddSeries(name, series[name])
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}

	return nil
}
