package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/geminiproxy/config"
)

func TestEventBus_RoundTrip(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan []byte, 1)
	require.NoError(t, bus.Subscribe(ctx, "test-topic", func(payload []byte) {
		received <- payload
	}))
	require.NoError(t, bus.Publish("test-topic", []byte(`{"status":200}`)))

	select {
	case got := <-received:
		assert.JSONEq(t, `{"status":200}`, string(got))
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	assert.NoError(t, bus.Publish("nobody-listens", []byte("x")))
}

func TestNewEventBusFromConfig(t *testing.T) {
	for _, cfg := range []*config.EventConfig{nil, {}, {Driver: "memory"}, {Driver: "MEMORY"}} {
		bus, err := NewEventBusFromConfig(cfg)
		require.NoError(t, err)
		require.NotNil(t, bus)
		assert.NoError(t, bus.Close())
	}
}

func TestNewEventBusFromConfig_NATSRequiresURL(t *testing.T) {
	_, err := NewEventBusFromConfig(&config.EventConfig{Driver: "nats"})
	assert.ErrorContains(t, err, "requires url")
}

func TestNewEventBusFromConfig_NATSUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	bus, err := NewEventBusFromConfig(&config.EventConfig{Driver: "nats", URL: "nats://127.0.0.1:1"})
	if err == nil {
		bus.Close()
		t.Skip("NATS streaming reachable - skipping error test")
	}
	assert.ErrorContains(t, err, "NATS")
}

func TestNewEventBusFromConfig_Unknown(t *testing.T) {
	bus, err := NewEventBusFromConfig(&config.EventConfig{Driver: "kafka"})
	assert.Error(t, err)
	assert.Nil(t, bus)
}
