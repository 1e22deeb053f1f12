// Package memory is an in-process coordination backend. It exists for
// tests and local runs: the same watch contract as the etcd driver,
// driven by direct Put/Delete calls instead of a remote namespace.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/millern/kafdrop/internal/coordination/common"
	"github.com/millern/kafdrop/internal/extension"
)

func init() {
	extension.SetCoordinator("memory", func(opts common.InternalOptions) (common.Coordinator, error) {
		return New(), nil
	})
}

type subMode int

const (
	modeChildren subMode = iota
	modeTree
	modeNode
)

type subscription struct {
	base     string
	mode     subMode
	listener common.Listener
}

type Coordinator struct {
	mu     sync.Mutex
	nodes  map[string][]byte
	subs   []*subscription
	closed bool
}

func New() *Coordinator {
	return &Coordinator{nodes: make(map[string][]byte)}
}

func (c *Coordinator) SubscribeChildren(path string, listener common.Listener) error {
	return c.subscribe(path, modeChildren, listener)
}

func (c *Coordinator) SubscribeTree(path string, listener common.Listener) error {
	return c.subscribe(path, modeTree, listener)
}

func (c *Coordinator) SubscribeNode(path string, listener common.Listener) error {
	return c.subscribe(path, modeNode, listener)
}

func (c *Coordinator) subscribe(path string, mode subMode, listener common.Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return common.ErrClosed
	}

	sub := &subscription{base: path, mode: mode, listener: listener}
	c.subs = append(c.subs, sub)

	var snapshot []common.Node
	for p, data := range c.nodes {
		if sub.matches(p) {
			snapshot = append(snapshot, common.Node{Path: p, Data: data})
		}
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Path < snapshot[j].Path })
	listener.Process(&common.Event{Type: common.InitialSync, Nodes: snapshot})
	return nil
}

func (c *Coordinator) Unsubscribe(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.subs[:0]
	for _, sub := range c.subs {
		if sub.base != path {
			kept = append(kept, sub)
		}
	}
	c.subs = kept
}

func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = nil
	c.closed = true
	return nil
}

// Put creates or replaces a node and notifies matching subscribers.
func (c *Coordinator) Put(path string, data []byte) {
	c.mu.Lock()
	_, existed := c.nodes[path]
	c.nodes[path] = data
	subs := c.matching(path)
	c.mu.Unlock()

	typ := common.NodeAdded
	if existed {
		typ = common.NodeUpdated
	}
	for _, sub := range subs {
		sub.Process(&common.Event{Type: typ, Nodes: []common.Node{{Path: path, Data: data}}})
	}
}

// Delete removes a node and notifies matching subscribers. Deleting an
// absent node notifies nobody.
func (c *Coordinator) Delete(path string) {
	c.mu.Lock()
	_, existed := c.nodes[path]
	delete(c.nodes, path)
	subs := c.matching(path)
	c.mu.Unlock()

	if !existed {
		return
	}
	for _, sub := range subs {
		sub.Process(&common.Event{Type: common.NodeRemoved, Nodes: []common.Node{{Path: path}}})
	}
}

func (c *Coordinator) matching(path string) []common.Listener {
	var out []common.Listener
	for _, sub := range c.subs {
		if sub.matches(path) {
			out = append(out, sub.listener)
		}
	}
	return out
}

func (s *subscription) matches(path string) bool {
	switch s.mode {
	case modeNode:
		return path == s.base
	case modeTree:
		return strings.HasPrefix(path, s.base+"/")
	default:
		rest := strings.TrimPrefix(path, s.base+"/")
		return rest != path && rest != "" && !strings.Contains(rest, "/")
	}
}
