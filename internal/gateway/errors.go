package gateway

import "errors"

var (
	// ErrNoBrokersAvailable: the broker table is empty, nothing to select.
	ErrNoBrokersAvailable = errors.New("no brokers available to select from")
	// ErrBrokerNotFound: an explicitly requested broker id does not resolve.
	ErrBrokerNotFound = errors.New("broker not found")
)
