package monitor

import "errors"

var (
	// ErrNotReady: the mirror has not finished its initial sync. Callers
	// should retry after a delay, this is not fatal.
	ErrNotReady = errors.New("cluster not ready")
	// ErrTopicNotFound: the named topic does not exist on the cluster.
	ErrTopicNotFound = errors.New("topic not found")
)
