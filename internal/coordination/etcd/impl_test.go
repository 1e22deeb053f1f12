package etcd

import "testing"

func TestRelativeStripsNamespace(t *testing.T) {
	c := &etcdCoordinator{rootPath: "/kafka"}

	if got := c.relative("/kafka/brokers/ids/1"); got != "/brokers/ids/1" {
		t.Errorf("relative = %q", got)
	}
	if got := c.relative("/kafka/controller"); got != "/controller" {
		t.Errorf("relative = %q", got)
	}
}

func TestIsChild(t *testing.T) {
	c := &etcdCoordinator{rootPath: "/kafka"}

	cases := []struct {
		base, path string
		want       bool
	}{
		{"/brokers/ids", "/brokers/ids/1", true},
		{"/brokers/ids", "/brokers/ids/1/extra", false},
		{"/brokers/ids", "/brokers/ids", false},
		{"/brokers/ids", "/brokers/idsish/1", false},
		{"/brokers/ids", "/config/topics/t", false},
	}
	for _, tc := range cases {
		if got := c.isChild(tc.base, tc.path); got != tc.want {
			t.Errorf("isChild(%q, %q) = %v, want %v", tc.base, tc.path, got, tc.want)
		}
	}
}
