package common

// Coordinator is the coordination-service capability: a hierarchical
// namespace with change notifications. Paths are slash separated and
// relative to the configured namespace.
type Coordinator interface {
	// SubscribeChildren watches the direct children of path.
	SubscribeChildren(path string, listener Listener) error
	// SubscribeTree watches path and everything below it.
	SubscribeTree(path string, listener Listener) error
	// SubscribeNode watches a single node.
	SubscribeNode(path string, listener Listener) error

	Unsubscribe(path string)
	Close() error
}
