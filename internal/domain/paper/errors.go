package paper

import "errors"

var (
	ErrUnsupportedType    = errors.New("unsupported analysis type")
	ErrTypeNotAvailable   = errors.New("analysis type not available yet")
	ErrParsingUnavailable = errors.New("paper parsing service unavailable")
)
