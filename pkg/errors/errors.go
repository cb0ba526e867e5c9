package errors

import (
	"errors"
)

var (
	ErrNilType         = errors.New("nil type")
	ErrNilHandler      = errors.New("nil handler")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrUnsupportedKind = errors.New("unsupported kind")
	ErrNilField        = errors.New("nil field")
	ErrNoStructField   = errors.New("no struct field")
	ErrNotStruct       = errors.New("not a struct")
)
