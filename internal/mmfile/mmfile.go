// Package mmfile provides platform-specific helpers for memory-mapping
// package files read-only.
package mmfile

import (
	"errors"
	"fmt"
	"math"
)

// ErrTooLarge indicates the file exceeds the configured size limit.
var ErrTooLarge = errors.New("mmfile: file too large")

// Mapping is a read-only view of a file. Data must not be used after Close.
type Mapping struct {
	data    []byte
	release func() error
}

// Data returns the mapped bytes.
func (m *Mapping) Data() []byte { return m.data }

// Close releases the mapping. It is safe to call more than once.
func (m *Mapping) Close() error { return m.release() }

func checkSize(path string, size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%s is %d bytes, limit %d: %w", path, size, maxSize, ErrTooLarge)
	}
	if size > math.MaxInt {
		return fmt.Errorf("%s is %d bytes: %w", path, size, ErrTooLarge)
	}
	return nil
}
