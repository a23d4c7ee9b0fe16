package reader

import (
	"errors"
	"os"

	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/mmfile"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/pkg/types"
)

// WrapIOErr classifies errors from opening a file.
func WrapIOErr(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &types.Error{Kind: types.ErrKindNotFound, Msg: "package file not found", Err: err}
	case errors.Is(err, mmfile.ErrTooLarge):
		return &types.Error{Kind: types.ErrKindUnsupported, Msg: "package file too large", Err: err}
	default:
		return &types.Error{Kind: types.ErrKindState, Msg: err.Error(), Err: err}
	}
}

func wrapFormatErr(err error) error {
	var typed *types.Error
	switch {
	case errors.As(err, &typed):
		return err
	case errors.Is(err, cfb.ErrSignature):
		return types.ErrNotPackage
	case errors.Is(err, cfb.ErrTruncated), errors.Is(err, strpool.ErrTruncated), errors.Is(err, format.ErrTruncated):
		return &types.Error{Kind: types.ErrKindFormat, Msg: "package truncated", Err: err}
	case errors.Is(err, cfb.ErrUnsupported), errors.Is(err, strpool.ErrUnsupportedCodepage), errors.Is(err, format.ErrUnsupported):
		return &types.Error{Kind: types.ErrKindUnsupported, Msg: "unsupported package feature", Err: err}
	case errors.Is(err, cfb.ErrNotFound):
		return &types.Error{Kind: types.ErrKindNotFound, Msg: "stream not found", Err: err}
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "corrupt package", Err: err}
	}
}
