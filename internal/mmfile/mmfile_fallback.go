//go:build !unix

package mmfile

import "os"

// Map reads the entire file when mmap is not available.
func Map(path string, maxSize int64) (*Mapping, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := checkSize(path, info.Size(), maxSize); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, release: func() error { return nil }}, nil
}
