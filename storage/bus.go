package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/awantoch/geminiproxy/event"
	"github.com/awantoch/geminiproxy/model"
)

// BusStorage publishes each exchange as JSON on an event bus topic.
// It is write-only.
type BusStorage struct {
	bus   event.EventBus
	topic string
}

var _ Storage = (*BusStorage)(nil)

func NewBusStorage(bus event.EventBus, topic string) *BusStorage {
	return &BusStorage{bus: bus, topic: topic}
}

func (b *BusStorage) Record(ctx context.Context, ex *model.Exchange) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}
	return b.bus.Publish(b.topic, data)
}

func (b *BusStorage) List(ctx context.Context, limit int) ([]*model.Exchange, error) {
	return nil, ErrListUnsupported
}

// Close leaves the bus open; its owner closes it.
func (b *BusStorage) Close() error {
	return nil
}
