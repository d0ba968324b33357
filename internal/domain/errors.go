package domain

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTooManyDocuments  = errors.New("too many documents in one merge request")
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrArchiveDisabled   = errors.New("report archive is not configured")
	ErrUploadFailed      = errors.New("report upload to storage failed")
)
