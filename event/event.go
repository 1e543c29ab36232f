package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
)

// EventBus carries opaque JSON payloads between the proxy and any listeners.
type EventBus interface {
	Publish(topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
	Close() error
}

// NewInProcEventBus returns a new in-memory event bus. Used when event config driver=="memory" or omitted.
func NewInProcEventBus() *WatermillEventBus {
	return NewWatermillInMemBus()
}

// NewEventBusFromConfig returns an EventBus based on config. Supported: memory (default), nats (with url).
func NewEventBusFromConfig(cfg *config.EventConfig) (EventBus, error) {
	if cfg == nil || cfg.Driver == "" || strings.EqualFold(cfg.Driver, constants.EventDriverMemory) {
		return NewWatermillInMemBus(), nil
	}
	switch strings.ToLower(cfg.Driver) {
	case constants.EventDriverNATS:
		if cfg.URL == "" {
			return nil, fmt.Errorf("NATS driver requires url")
		}
		clusterID, clientID := cfg.ClusterID, cfg.ClientID
		if clusterID == "" {
			clusterID = constants.DefaultNATSClusterID
		}
		if clientID == "" {
			clientID = constants.DefaultNATSClientID
		}
		bus, err := NewWatermillNATSBus(clusterID, clientID, cfg.URL)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %s", cfg.Driver)
	}
}
