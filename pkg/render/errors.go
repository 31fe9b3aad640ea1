package render

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported content type")
	ErrInvalidDocument   = errors.New("invalid pdf document")
	ErrPageRange         = errors.New("page out of range")
	ErrRenderFailed      = errors.New("render failed")
)
