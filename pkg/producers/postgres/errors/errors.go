package errors

import "errors"

var (
	ErrGenericTypesUnsupported = errors.New("generic types unsupported")
	ErrRecursiveType           = errors.New("recursive type")
)
