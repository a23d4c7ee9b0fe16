//go:build unix

package mmfile

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only. Files larger than maxSize (when
// positive) are rejected before mapping.
func Map(path string, maxSize int64) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if err := checkSize(path, size, maxSize); err != nil {
		return nil, err
	}
	if size == 0 {
		return &Mapping{data: []byte{}, release: func() error { return nil }}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	// Packages are read mostly front to back: header, FAT, then streams.
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("mmfile: madvise %s: %w", path, err)
	}
	return &Mapping{data: data, release: sync.OnceValue(func() error { return unix.Munmap(data) })}, nil
}
