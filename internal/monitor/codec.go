package monitor

import (
	"encoding/json"
	"fmt"
)

// BrokerRegistration is the decoded payload of a broker node.
type BrokerRegistration struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Codec decodes the coordination service's opaque node payloads.
type Codec interface {
	DecodeBroker(data []byte) (BrokerRegistration, error)
	DecodeController(data []byte) (int, error)
	DecodeTopicConfig(data []byte) (map[string]string, error)
}

// JSONCodec reads the JSON payloads Kafka writes into its coordination
// tree.
type JSONCodec struct{}

func (JSONCodec) DecodeBroker(data []byte) (BrokerRegistration, error) {
	var reg BrokerRegistration
	if err := json.Unmarshal(data, &reg); err != nil {
		return BrokerRegistration{}, err
	}
	if reg.Host == "" {
		return BrokerRegistration{}, fmt.Errorf("broker registration without host: %s", data)
	}
	return reg, nil
}

func (JSONCodec) DecodeController(data []byte) (int, error) {
	var payload struct {
		BrokerID *int `json:"brokerid"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, err
	}
	if payload.BrokerID == nil {
		return 0, fmt.Errorf("controller payload without brokerid: %s", data)
	}
	return *payload.BrokerID, nil
}

func (JSONCodec) DecodeTopicConfig(data []byte) (map[string]string, error) {
	var payload struct {
		Config map[string]string `json:"config"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload.Config, nil
}
