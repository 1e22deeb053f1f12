package monitor

import (
	"strconv"
	"strings"
	"sync"

	"github.com/millern/kafdrop/internal/cluster"
	coordination "github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/logger"
)

// The listeners below run on the coordinator's delivery goroutines.
// Decode failures never escape here: the event is logged and skipped,
// the mirror keeps its last-known-good state.

type brokerListener struct {
	m    *Monitor
	once sync.Once
}

func (l *brokerListener) Process(event *coordination.Event) {
	switch event.Type {
	case coordination.InitialSync:
		// bulk-populate from the snapshot; events coalesced before the
		// subscription attached are covered by this
		for _, node := range event.Nodes {
			l.put(node)
		}
		l.once.Do(func() { l.m.cacheInitialized("broker") })
	case coordination.NodeAdded, coordination.NodeUpdated:
		l.put(event.Nodes[0])
	case coordination.NodeRemoved:
		id, err := brokerIDFromPath(event.Nodes[0].Path)
		if err != nil {
			logger.Errorf("unable to parse broker id from %s: %v", event.Nodes[0].Path, err)
			return
		}
		l.m.removeBroker(id)
	}
}

func (l *brokerListener) put(node coordination.Node) {
	id, err := brokerIDFromPath(node.Path)
	if err != nil {
		logger.Errorf("unable to parse broker id from %s: %v", node.Path, err)
		return
	}
	reg, err := l.m.opts.Codec.DecodeBroker(node.Data)
	if err != nil {
		logger.Errorf("unable to read broker %d registration: %v", id, err)
		return
	}
	l.m.upsertBroker(cluster.Broker{ID: id, Host: reg.Host, Port: reg.Port})
}

type controllerListener struct {
	m *Monitor
}

func (l *controllerListener) Process(event *coordination.Event) {
	switch event.Type {
	case coordination.InitialSync:
		// the synthetic firing right after start; zero nodes means no
		// controller is elected yet
		if len(event.Nodes) == 0 {
			return
		}
		l.update(event.Nodes[0])
	case coordination.NodeAdded, coordination.NodeUpdated:
		l.update(event.Nodes[0])
	case coordination.NodeRemoved:
		// leaderless window: zero brokers hold the flag
		l.m.clearController()
	}
}

func (l *controllerListener) update(node coordination.Node) {
	id, err := l.m.opts.Codec.DecodeController(node.Data)
	if err != nil {
		// fail open: flags keep their last-known-good value
		logger.Errorf("unable to read controller data: %v", err)
		return
	}
	l.m.setController(id)
}

type topicConfigListener struct {
	m    *Monitor
	once sync.Once
}

func (l *topicConfigListener) Process(event *coordination.Event) {
	switch event.Type {
	case coordination.InitialSync:
		for _, node := range event.Nodes {
			l.put(node)
		}
		l.once.Do(func() { l.m.cacheInitialized("topic configuration") })
	case coordination.NodeAdded, coordination.NodeUpdated:
		l.put(event.Nodes[0])
	case coordination.NodeRemoved:
		name := lastSegment(event.Nodes[0].Path)
		l.m.mu.Lock()
		delete(l.m.topicConfigs, name)
		l.m.mu.Unlock()
	}
}

func (l *topicConfigListener) put(node coordination.Node) {
	name := lastSegment(node.Path)
	config, err := l.m.opts.Codec.DecodeTopicConfig(node.Data)
	if err != nil {
		logger.Errorf("unable to read config for topic %s: %v", name, err)
		return
	}
	l.m.mu.Lock()
	l.m.topicConfigs[name] = config
	l.m.mu.Unlock()
}

type topicTreeListener struct {
	m    *Monitor
	once sync.Once
}

func (l *topicTreeListener) Process(event *coordination.Event) {
	switch event.Type {
	case coordination.InitialSync:
		for _, node := range event.Nodes {
			l.add(node.Path)
		}
		l.once.Do(func() { l.m.cacheInitialized("topic tree") })
	case coordination.NodeAdded, coordination.NodeUpdated:
		l.add(event.Nodes[0].Path)
	case coordination.NodeRemoved:
		segments := segmentsAfter(event.Nodes[0].Path, BrokerTopicsPath)
		// only the topic's root node takes the name out of the registry
		if len(segments) == 1 {
			l.m.mu.Lock()
			delete(l.m.topicNames, segments[0])
			l.m.mu.Unlock()
		}
	}
}

func (l *topicTreeListener) add(path string) {
	segments := segmentsAfter(path, BrokerTopicsPath)
	if len(segments) == 0 {
		return
	}
	l.m.mu.Lock()
	l.m.topicNames[segments[0]] = struct{}{}
	l.m.mu.Unlock()
}

type consumerTreeListener struct {
	m    *Monitor
	once sync.Once
}

func (l *consumerTreeListener) Process(event *coordination.Event) {
	switch event.Type {
	case coordination.InitialSync:
		for _, node := range event.Nodes {
			l.add(node.Path)
		}
		l.once.Do(func() { l.m.cacheInitialized("consumer tree") })
	case coordination.NodeAdded, coordination.NodeUpdated:
		l.add(event.Nodes[0].Path)
	case coordination.NodeRemoved:
		l.remove(event.Nodes[0].Path)
	}
}

func (l *consumerTreeListener) add(path string) {
	segments := segmentsAfter(path, ConsumersPath)
	if len(segments) == 0 {
		return
	}
	group := segments[0]
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if l.m.groups[group] == nil {
		l.m.groups[group] = make(map[string]struct{})
	}
	// /consumers/<group>/ids/<member> registers a member
	if len(segments) >= 3 && segments[1] == "ids" {
		l.m.groups[group][segments[2]] = struct{}{}
	}
}

func (l *consumerTreeListener) remove(path string) {
	segments := segmentsAfter(path, ConsumersPath)
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	switch {
	case len(segments) == 1:
		delete(l.m.groups, segments[0])
	case len(segments) >= 3 && segments[1] == "ids":
		if members, ok := l.m.groups[segments[0]]; ok {
			delete(members, segments[2])
		}
	}
}

// path helpers

func brokerIDFromPath(path string) (int, error) {
	return strconv.Atoi(lastSegment(path))
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

func segmentsAfter(path, base string) []string {
	rest := strings.TrimPrefix(path, base+"/")
	if rest == path || rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
