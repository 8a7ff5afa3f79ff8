package journal

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrDayNotFound  = errors.New("day not found")
	ErrPostNotFound = errors.New("post not found")
	ErrStorage      = errors.New("storage failure")
)
