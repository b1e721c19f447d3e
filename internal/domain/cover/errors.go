package cover

import "errors"

var (
	ErrInvalidImage  = errors.New("invalid cover image")
	ErrImageTooLarge = errors.New("cover image exceeds size limit")
	ErrStorageFailed = errors.New("failed to store cover image")
)
