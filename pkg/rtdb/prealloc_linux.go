//go:build linux

package rtdb

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for f so that later ring writes
// cannot fail with ENOSPC mid-insert. Unwritten slots read as zeros.
func preallocate(f *os.File, size int64) error {
	return unix.Fallocate(int(f.Fd()), 0, 0, size)
}
