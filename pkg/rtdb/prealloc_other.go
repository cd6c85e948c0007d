//go:build !linux

package rtdb

import "os"

// preallocate extends f to size bytes. Unwritten slots read as zeros.
func preallocate(f *os.File, size int64) error {
	return f.Truncate(size)
}
