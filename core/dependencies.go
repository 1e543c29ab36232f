package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/event"
	"github.com/awantoch/geminiproxy/logger"
	"github.com/awantoch/geminiproxy/proxy"
	"github.com/awantoch/geminiproxy/secrets"
	"github.com/awantoch/geminiproxy/storage"
	"github.com/awantoch/geminiproxy/telemetry"
)

// Dependencies holds everything the proxy route needs at request time.
type Dependencies struct {
	Config  *config.Config
	Secrets secrets.SecretsProvider
	Bus     event.EventBus
	// Storage is nil when auditing is disabled.
	Storage storage.Storage
	Handler *proxy.Handler
}

// InitializeDependencies sets up the secrets provider, audit storage and the
// upstream client, and wires them into the proxy handler.
// Returns a cleanup function that should be called when shutting down.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	provider, err := secrets.NewSecretsProvider(ctx, &cfg.Secrets)
	if err != nil {
		return nil, nil, logger.Errorf("failed to create secrets provider: %w", err)
	}

	// The bus is only needed when exchanges are published to it.
	var bus event.EventBus
	if strings.EqualFold(cfg.Audit.Driver, constants.AuditDriverBus) {
		bus, err = event.NewEventBusFromConfig(&cfg.Event)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to create event bus, using in-memory fallback", "error", err)
			bus = event.NewInProcEventBus()
		}
	}

	store, err := storage.NewStorageFromConfig(ctx, &cfg.Audit, bus)
	if err != nil {
		closeAll(provider, bus, nil)
		return nil, nil, logger.Errorf("failed to initialize audit storage: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   cfg.Upstream.Timeout.Std(),
		Transport: telemetry.Transport(nil),
	}
	opts := proxy.Options{
		Secrets:      provider,
		APIKeyName:   cfg.Upstream.APIKeyName,
		Upstream:     proxy.NewClient(cfg.Upstream.BaseURL, httpClient, cfg.Upstream.Timeout.Std()),
		MaxBodyBytes: cfg.MaxBodyBytes,
		AllowOrigin:  cfg.CORS.AllowOrigin,
	}
	// Assigning a nil Storage would leave a non-nil Recorder behind.
	if store != nil {
		opts.Recorder = store
	}

	deps := &Dependencies{
		Config:  cfg,
		Secrets: provider,
		Bus:     bus,
		Storage: store,
		Handler: proxy.NewHandler(opts),
	}
	cleanup := func() {
		closeAll(provider, bus, store)
	}
	return deps, cleanup, nil
}

func closeAll(provider secrets.SecretsProvider, bus event.EventBus, store storage.Storage) {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus: %v", err)
		}
	}
	if provider != nil {
		if err := provider.Close(); err != nil {
			logger.Error("Failed to close secrets provider: %v", err)
		}
	}
}
