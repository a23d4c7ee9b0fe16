package msi

import "log/slog"

// OpenOptions controls how a package is opened. A nil *OpenOptions is the
// same as the zero value.
type OpenOptions struct {
	// Logger receives debug diagnostics: the open summary, skipped summary
	// properties, Property table overrides and table decodes.
	// If nil, logs are discarded.
	Logger *slog.Logger

	// MaxStreamSize rejects any stream larger than this many bytes with an
	// unsupported error. Zero means no limit.
	MaxStreamSize int

	// MaxFileSize bounds OpenFile. Zero means no limit.
	MaxFileSize int64
}

func (o *OpenOptions) orDefault() OpenOptions {
	if o == nil {
		return OpenOptions{}
	}
	return *o
}
