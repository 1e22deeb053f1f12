package etcd

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/extension"
	"github.com/millern/kafdrop/internal/logger"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func init() {
	extension.SetCoordinator("etcd", NewCoordinator)
}

const (
	Sep = "/"
)

var NewCoordinator extension.CoordinatorFactory = func(opts common.InternalOptions) (common.Coordinator, error) {
	c := &etcdCoordinator{InternalOptions: opts}

	c.rootPath = strings.TrimSuffix(c.NameSpace, Sep)
	logger.Debugf("etcd coordinator start with root path: %s", c.rootPath)

	c.ctx, c.cancel = context.WithCancel(context.Background())

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   c.Address,
		DialTimeout: time.Duration(c.DialTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	c.cli = cli
	c.kv = clientv3.NewKV(cli)
	c.watcher = clientv3.NewWatcher(cli)
	c.subs = make(map[string]context.CancelFunc)

	return c, nil
}

type etcdCoordinator struct {
	common.InternalOptions
	rootPath string

	ctx    context.Context
	cancel context.CancelFunc

	cli     *clientv3.Client
	kv      clientv3.KV
	watcher clientv3.Watcher

	subs    map[string]context.CancelFunc
	subLock sync.Mutex

	closeOnce sync.Once
}

func (c *etcdCoordinator) SubscribeChildren(path string, listener common.Listener) error {
	// direct children only: descendants deeper than one segment are skipped
	return c.createSub(path, listener, true, true)
}

func (c *etcdCoordinator) SubscribeTree(path string, listener common.Listener) error {
	return c.createSub(path, listener, true, false)
}

func (c *etcdCoordinator) SubscribeNode(path string, listener common.Listener) error {
	return c.createSub(path, listener, false, false)
}

func (c *etcdCoordinator) Unsubscribe(path string) {
	c.deleteSub(path)
}

func (c *etcdCoordinator) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.cli.Close()
	})
	return err
}

func (c *etcdCoordinator) createSub(path string, listener common.Listener, prefix, childrenOnly bool) error {
	key := c.rootPath + path
	var getOpts, watchOpts []clientv3.OpOption
	if prefix {
		key = key + Sep
		getOpts = append(getOpts, clientv3.WithPrefix())
		watchOpts = append(watchOpts, clientv3.WithPrefix())
	}

	getResp, err := c.kv.Get(c.ctx, key, getOpts...)
	if err != nil {
		return err
	}

	// snapshot first, deltas after: the listener always sees one
	// InitialSync before any add/update/remove
	snapshot := make([]common.Node, 0, len(getResp.Kvs))
	for _, kv := range getResp.Kvs {
		p := c.relative(string(kv.Key))
		if childrenOnly && !c.isChild(path, p) {
			continue
		}
		snapshot = append(snapshot, common.Node{Path: p, Data: kv.Value})
	}
	listener.Process(&common.Event{Type: common.InitialSync, Nodes: snapshot})

	c.deleteSub(path)

	ctx, cancel := context.WithCancel(c.ctx)
	go func(ctx context.Context) {
		rev := getResp.Header.GetRevision() + 1
		for {
			watchCh := c.watcher.Watch(ctx, key, append(watchOpts, clientv3.WithRev(rev))...)
			for {
				select {
				case <-ctx.Done():
					return
				case watchResp, ok := <-watchCh:
					if !ok {
						return
					}
					if watchResp.Err() != nil {
						logger.Warnf("etcd coordinator watch key %s failed: %v", key, watchResp.Err())
						break
					}
					for _, event := range watchResp.Events {
						c.dispatch(path, event, listener, childrenOnly)
					}
					rev = watchResp.Header.GetRevision() + 1
				}
			}
		}
	}(ctx)

	c.subLock.Lock()
	defer c.subLock.Unlock()
	c.subs[path] = cancel

	return nil
}

func (c *etcdCoordinator) deleteSub(key string) {
	c.subLock.Lock()
	defer c.subLock.Unlock()
	if prevCancel, ok := c.subs[key]; ok {
		prevCancel()
		delete(c.subs, key)
	}
}

func (c *etcdCoordinator) dispatch(base string, event *clientv3.Event, listener common.Listener, childrenOnly bool) {
	p := c.relative(string(event.Kv.Key))
	if childrenOnly && !c.isChild(base, p) {
		return
	}

	var typ common.EventType
	switch {
	case event.Type == clientv3.EventTypeDelete:
		typ = common.NodeRemoved
	case event.IsCreate():
		typ = common.NodeAdded
	default:
		typ = common.NodeUpdated
	}

	node := common.Node{Path: p}
	if typ != common.NodeRemoved {
		node.Data = event.Kv.Value
	}
	listener.Process(&common.Event{Type: typ, Nodes: []common.Node{node}})
}

// relative strips the namespace so subscribers see logical paths.
func (c *etcdCoordinator) relative(key string) string {
	return strings.TrimPrefix(key, c.rootPath)
}

func (c *etcdCoordinator) isChild(base, path string) bool {
	rest := strings.TrimPrefix(path, base+Sep)
	return rest != path && rest != "" && !strings.Contains(rest, Sep)
}
