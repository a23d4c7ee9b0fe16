package cfb

import "errors"

var (
	// ErrSignature indicates the buffer does not start with the compound file magic.
	ErrSignature = errors.New("cfb: signature mismatch")
	// ErrTruncated indicates a structure or stream extends past the end of the file.
	ErrTruncated = errors.New("cfb: truncated")
	// ErrCorrupt indicates inconsistent sector chains, directory links or header fields.
	ErrCorrupt = errors.New("cfb: corrupt structure")
	// ErrUnsupported indicates a recognized but unsupported variant.
	ErrUnsupported = errors.New("cfb: unsupported")
	// ErrNotFound indicates a requested stream does not exist.
	ErrNotFound = errors.New("cfb: not found")
)
