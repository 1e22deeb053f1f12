package gateway

import (
	"math/rand"

	"github.com/millern/kafdrop/internal/cluster"
)

// Selector picks the broker a gateway call talks to. Strategy point: the
// default is health-blind uniform random, a smarter policy can be swapped
// in without touching the gateway.
type Selector interface {
	Select(brokers []cluster.Broker) (cluster.Broker, bool)
}

type RandomSelector struct{}

func (RandomSelector) Select(brokers []cluster.Broker) (cluster.Broker, bool) {
	if len(brokers) == 0 {
		return cluster.Broker{}, false
	}
	return brokers[rand.Intn(len(brokers))], true
}
