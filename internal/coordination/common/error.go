package common

import "errors"

var (
	ErrNotSupport = errors.New("not support")
	ErrClosed     = errors.New("coordinator closed")
)
