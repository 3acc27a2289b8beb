package binder

import "errors"

var (
	ErrInvalidTarget = errors.New("binder: target must be a non-nil pointer to struct")
	ErrNilExtractor  = errors.New("binder: extractor function is nil")
	ErrMissingParam  = errors.New("binder: missing required parameter")
	ErrInvalidValue  = errors.New("binder: invalid parameter value")
	ErrUnsupported   = errors.New("binder: unsupported field type")
)
