package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/calvinalkan/roundtable/pkg/rtdb"
)

//go:generate go run github.com/calvinalkan/roundtable/cmd/dpgen -t MemInfo -o meminfo_datapoint.go

// MemInfo is one sample of /proc/meminfo, all values in KiB.
type MemInfo struct {
	Total   rtdb.U32
	Free    rtdb.U32
	Avail   rtdb.U32
	Buffers rtdb.U32
	Cached  rtdb.U32
}

// readMemInfo scrapes the current values from /proc/meminfo. Fields
// missing from the file are left zero.
func readMemInfo() (MemInfo, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return MemInfo{}, err
	}
	defer func() { _ = f.Close() }()

	var mi MemInfo

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		v, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			continue
		}

		switch parts[0] {
		case "MemTotal:":
			mi.Total = rtdb.U32(v)
		case "MemFree:":
			mi.Free = rtdb.U32(v)
		case "MemAvailable:":
			mi.Avail = rtdb.U32(v)
		case "Buffers:":
			mi.Buffers = rtdb.U32(v)
		case "Cached:":
			mi.Cached = rtdb.U32(v)
		}
	}

	return mi, scanner.Err()
}
