package common

type Listener interface {
	Process(*Event)
}

type EventType int

const (
	// NodeAdded and NodeUpdated carry the node's current payload.
	NodeAdded EventType = iota
	NodeUpdated
	// NodeRemoved carries the path only.
	NodeRemoved
	// InitialSync fires once per subscription with the full snapshot of
	// the subscribed path, before any delta is delivered.
	InitialSync
)

func (t EventType) String() string {
	switch t {
	case NodeAdded:
		return "added"
	case NodeUpdated:
		return "updated"
	case NodeRemoved:
		return "removed"
	case InitialSync:
		return "initial-sync"
	}
	return "unknown"
}

// Node is one entry of the coordination namespace. Data is an opaque
// payload; decoding it is the subscriber's business.
type Node struct {
	Path string
	Data []byte
}

type Event struct {
	Type  EventType
	Nodes []Node
}
