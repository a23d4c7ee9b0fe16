package format

import "errors"

var (
	// ErrFormat indicates database content that violates the encoding rules.
	ErrFormat = errors.New("format: malformed database")
	// ErrTruncated indicates a stream lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated stream")
	// ErrUnsupported indicates the structure or feature is not supported.
	ErrUnsupported = errors.New("format: unsupported feature")
)
