package strpool

import "errors"

var (
	// ErrTruncated indicates a descriptor claims more bytes than _StringData holds.
	ErrTruncated = errors.New("strpool: truncated")
	// ErrFormat indicates a malformed pool or a reference outside of it.
	ErrFormat = errors.New("strpool: malformed pool")
	// ErrUnsupportedCodepage indicates the pool codepage has no known decoder.
	ErrUnsupportedCodepage = errors.New("strpool: unsupported codepage")
)
