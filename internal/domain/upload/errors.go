package upload

import "errors"

var (
	ErrImageDataMissing     = errors.New("no base64 image found")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidEncoding      = errors.New("invalid base64 encoding")
	ErrCorruptImage         = errors.New("corrupt image")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrStorage              = errors.New("object storage failure")
)
