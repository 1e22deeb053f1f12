package memory

import (
	"sync"
	"testing"

	"github.com/millern/kafdrop/internal/coordination/common"
)

type recordingListener struct {
	mu     sync.Mutex
	events []*common.Event
}

func (l *recordingListener) Process(event *common.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingListener) snapshot() []*common.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*common.Event(nil), l.events...)
}

func TestSubscribeChildrenDeliversSnapshotFirst(t *testing.T) {
	c := New()
	c.Put("/brokers/ids/1", []byte("a"))
	c.Put("/brokers/ids/2", []byte("b"))
	c.Put("/brokers/ids/2/deep", []byte("not a child"))
	c.Put("/other", []byte("x"))

	l := &recordingListener{}
	if err := c.SubscribeChildren("/brokers/ids", l); err != nil {
		t.Fatal(err)
	}

	events := l.snapshot()
	if len(events) != 1 || events[0].Type != common.InitialSync {
		t.Fatalf("expected a single InitialSync, got %+v", events)
	}
	if len(events[0].Nodes) != 2 {
		t.Fatalf("snapshot = %+v, want the two direct children", events[0].Nodes)
	}
	if events[0].Nodes[0].Path != "/brokers/ids/1" || events[0].Nodes[1].Path != "/brokers/ids/2" {
		t.Errorf("snapshot paths wrong: %+v", events[0].Nodes)
	}
}

func TestPutAndDeleteDispatch(t *testing.T) {
	c := New()
	l := &recordingListener{}
	if err := c.SubscribeChildren("/brokers/ids", l); err != nil {
		t.Fatal(err)
	}

	c.Put("/brokers/ids/1", []byte("a"))
	c.Put("/brokers/ids/1", []byte("b"))
	c.Delete("/brokers/ids/1")
	c.Delete("/brokers/ids/1") // absent: nobody notified
	c.Put("/config/topics/t", []byte("elsewhere"))

	events := l.snapshot()
	want := []common.EventType{common.InitialSync, common.NodeAdded, common.NodeUpdated, common.NodeRemoved}
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want types %v", events, want)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event[%d] = %v, want %v", i, events[i].Type, typ)
		}
	}
	if string(events[2].Nodes[0].Data) != "b" {
		t.Errorf("update payload = %q, want b", events[2].Nodes[0].Data)
	}
}

func TestTreeAndNodeModes(t *testing.T) {
	c := New()
	tree := &recordingListener{}
	node := &recordingListener{}
	if err := c.SubscribeTree("/consumers", tree); err != nil {
		t.Fatal(err)
	}
	if err := c.SubscribeNode("/controller", node); err != nil {
		t.Fatal(err)
	}

	c.Put("/consumers/g1/ids/m1", []byte("x"))
	c.Put("/controller", []byte(`{"brokerid":1}`))
	c.Put("/controller-like", []byte("no"))

	if got := len(tree.snapshot()); got != 2 { // sync + deep put
		t.Errorf("tree listener saw %d events, want 2", got)
	}
	if got := len(node.snapshot()); got != 2 { // sync + exact put
		t.Errorf("node listener saw %d events, want 2", got)
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	c := New()
	l := &recordingListener{}
	if err := c.SubscribeChildren("/brokers/ids", l); err != nil {
		t.Fatal(err)
	}

	c.Unsubscribe("/brokers/ids")
	c.Put("/brokers/ids/1", []byte("a"))
	if got := len(l.snapshot()); got != 1 {
		t.Errorf("unsubscribed listener saw %d events, want only the sync", got)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.SubscribeChildren("/brokers/ids", l); err == nil {
		t.Error("subscribe after close should fail")
	}
}
