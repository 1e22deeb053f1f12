// Package monitor keeps a live in-memory mirror of the cluster's
// coordination metadata: broker membership, controller identity, topic
// configuration and consumer group registration. The mirror is derived
// from coordination-service watch events and answers no query until the
// initial sync of every watched subtree has landed. Per-partition facts
// that only live on brokers (offsets, metadata detail) are fetched
// through the retrying gateway instead.
package monitor

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/millern/kafdrop/internal/cluster"
	coordination "github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/gateway"
	"github.com/millern/kafdrop/internal/logger"
)

// watched paths, laid out like Kafka's ZooKeeper tree
const (
	BrokerIDsPath    = "/brokers/ids"
	TopicConfigPath  = "/config/topics"
	BrokerTopicsPath = "/brokers/topics"
	ConsumersPath    = "/consumers"
	ControllerPath   = "/controller"
)

// subtreeCaches is how many subtree subscriptions must report initial
// sync before reads unblock. The controller node does not count.
const subtreeCaches = 4

type Monitor struct {
	opts  *Options
	coord coordination.Coordinator
	gw    *gateway.Gateway

	initCount atomic.Int32

	mu            sync.RWMutex
	brokers       map[int]cluster.Broker
	controllerID  int
	hasController bool
	topicConfigs  map[string]map[string]string
	topicNames    map[string]struct{}
	groups        map[string]map[string]struct{}

	stopOnce sync.Once
}

func New(coord coordination.Coordinator, opts *Options) *Monitor {
	m := &Monitor{
		opts:         opts,
		coord:        coord,
		brokers:      make(map[int]cluster.Broker),
		topicConfigs: make(map[string]map[string]string),
		topicNames:   make(map[string]struct{}),
		groups:       make(map[string]map[string]struct{}),
	}
	m.gw = gateway.New(m, opts.GatewayOpts)
	return m
}

// Start subscribes the five watchers. Subscriptions run concurrently on
// the coordinator's delivery goroutines; Start only fails if a
// subscription cannot be established, and Stop is safe after a partial
// failure.
func (m *Monitor) Start() error {
	m.initCount.Store(subtreeCaches)

	if err := m.coord.SubscribeChildren(BrokerIDsPath, &brokerListener{m: m}); err != nil {
		return err
	}
	if err := m.coord.SubscribeChildren(TopicConfigPath, &topicConfigListener{m: m}); err != nil {
		return err
	}
	if err := m.coord.SubscribeTree(BrokerTopicsPath, &topicTreeListener{m: m}); err != nil {
		return err
	}
	if err := m.coord.SubscribeTree(ConsumersPath, &consumerTreeListener{m: m}); err != nil {
		return err
	}
	return m.coord.SubscribeNode(ControllerPath, &controllerListener{m: m})
}

// Stop unsubscribes every watcher. Idempotent.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		for _, path := range []string{BrokerIDsPath, TopicConfigPath, BrokerTopicsPath, ConsumersPath, ControllerPath} {
			m.coord.Unsubscribe(path)
		}
	})
}

func (m *Monitor) ensureInitialized() error {
	if m.initCount.Load() > 0 {
		return ErrNotReady
	}
	return nil
}

// Ready reports whether every subtree has completed its initial sync.
func (m *Monitor) Ready() bool {
	return m.initCount.Load() == 0
}

// WaitReady blocks until the mirror is primed or ctx ends.
func (m *Monitor) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if m.Ready() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Brokers implements gateway.BrokerSource. No readiness check: the
// gateway is only reachable through reads that already passed it.
func (m *Monitor) Brokers() []cluster.Broker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.brokerListLocked()
}

// Broker implements gateway.BrokerSource.
func (m *Monitor) Broker(id int) (cluster.Broker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	broker, ok := m.brokers[id]
	return broker, ok
}

// GetBrokers returns a snapshot of the broker table, ascending by id.
func (m *Monitor) GetBrokers() ([]cluster.Broker, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return m.Brokers(), nil
}

func (m *Monitor) GetBroker(id int) (cluster.Broker, error) {
	if err := m.ensureInitialized(); err != nil {
		return cluster.Broker{}, err
	}
	broker, ok := m.Broker(id)
	if !ok {
		return cluster.Broker{}, gateway.ErrBrokerNotFound
	}
	return broker, nil
}

// GetTopics fetches metadata for every topic from a live broker and
// attaches per-partition sizes, sorted by topic name.
func (m *Monitor) GetTopics(ctx context.Context) ([]*cluster.Topic, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}

	var metadata map[string]*cluster.Topic
	err := m.gw.WithBroker(ctx, gateway.AnyBroker, func(ch gateway.Channel) error {
		md, err := ch.TopicMetadata(ctx)
		if err != nil {
			return err
		}
		for _, topic := range md {
			sizes, err := ch.PartitionSizes(ctx, topic.Name)
			if err != nil {
				return err
			}
			applySizes(topic, sizes)
		}
		metadata = md
		return nil
	})
	if err != nil {
		return nil, err
	}

	topics := make([]*cluster.Topic, 0, len(metadata))
	for _, topic := range metadata {
		topic.Config = m.topicConfig(topic.Name)
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (m *Monitor) GetTopic(ctx context.Context, name string) (*cluster.Topic, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}

	var topic *cluster.Topic
	err := m.gw.WithBroker(ctx, gateway.AnyBroker, func(ch gateway.Channel) error {
		md, err := ch.TopicMetadata(ctx, name)
		if err != nil {
			return err
		}
		found, ok := md[name]
		if !ok {
			topic = nil
			return nil
		}
		sizes, err := ch.PartitionSizes(ctx, name)
		if err != nil {
			return err
		}
		applySizes(found, sizes)
		topic = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}
	topic.Config = m.topicConfig(name)
	return topic, nil
}

// GetTopicNames lists the topics registered in the coordination tree.
func (m *Monitor) GetTopicNames() ([]string, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.topicNames))
	for name := range m.topicNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetConsumerGroups lists registered consumer groups and their members.
func (m *Monitor) GetConsumerGroups() ([]cluster.ConsumerGroup, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make([]cluster.ConsumerGroup, 0, len(m.groups))
	for name, members := range m.groups {
		group := cluster.ConsumerGroup{Name: name}
		for member := range members {
			group.Members = append(group.Members, member)
		}
		sort.Strings(group.Members)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// GetClusterSummary reduces topic views into one cluster-wide summary.
func (m *Monitor) GetClusterSummary(topics []*cluster.Topic) (*cluster.ClusterSummary, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return cluster.Summarize(topics), nil
}

// GetMessages fetches up to count records from one partition starting at
// offset. The result is ordered and possibly empty, never nil.
func (m *Monitor) GetMessages(ctx context.Context, tp cluster.TopicPartition, offset int64, count int, d cluster.Deserializer) ([]cluster.Message, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}

	messages := []cluster.Message{}
	err := m.gw.WithBroker(ctx, gateway.AnyBroker, func(ch gateway.Channel) error {
		records, err := ch.Records(ctx, tp, offset, count, d)
		if err != nil {
			return err
		}
		messages = append(messages, records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// internal state transitions, all under m.mu

func (m *Monitor) upsertBroker(broker cluster.Broker) {
	m.mu.Lock()
	_, existed := m.brokers[broker.ID]
	m.brokers[broker.ID] = broker
	m.applyControllerLocked()
	m.mu.Unlock()

	verb := "added"
	if existed {
		verb = "updated"
	}
	logger.Infof("kafka broker %d was %s", broker.ID, verb)
}

func (m *Monitor) removeBroker(id int) {
	m.mu.Lock()
	_, existed := m.brokers[id]
	if existed {
		delete(m.brokers, id)
		m.applyControllerLocked()
	}
	m.mu.Unlock()

	if !existed {
		// a remove for an id never tracked points at a missed event
		logger.Warnf("removal of untracked kafka broker %d ignored", id)
		return
	}
	logger.Infof("kafka broker %d was removed", id)
}

func (m *Monitor) setController(id int) {
	m.mu.Lock()
	m.controllerID = id
	m.hasController = true
	m.applyControllerLocked()
	m.mu.Unlock()
}

func (m *Monitor) clearController() {
	m.mu.Lock()
	m.hasController = false
	m.applyControllerLocked()
	m.mu.Unlock()
}

// applyControllerLocked recomputes every broker's controller flag from
// the last decoded controller id. Full recompute, never an incremental
// patch: at most one broker can hold the flag.
func (m *Monitor) applyControllerLocked() {
	for id, broker := range m.brokers {
		broker.Controller = m.hasController && id == m.controllerID
		m.brokers[id] = broker
	}
}

func (m *Monitor) brokerListLocked() []cluster.Broker {
	brokers := make([]cluster.Broker, 0, len(m.brokers))
	for _, broker := range m.brokers {
		brokers = append(brokers, broker)
	}
	sort.Slice(brokers, func(i, j int) bool { return brokers[i].ID < brokers[j].ID })
	return brokers
}

func (m *Monitor) topicConfig(name string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.topicConfigs[name]
}

func (m *Monitor) cacheInitialized(name string) {
	m.initCount.Add(-1)
	logger.Infof("%s cache initialized", name)
}

func applySizes(topic *cluster.Topic, sizes map[int]gateway.PartitionSize) {
	for i, p := range topic.Partitions {
		if size, ok := sizes[p.ID]; ok {
			topic.Partitions[i].FirstOffset = size.FirstOffset
			topic.Partitions[i].Size = size.LastOffset
		}
	}
}
