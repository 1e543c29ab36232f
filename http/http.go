package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/core"
	"github.com/awantoch/geminiproxy/logger"
	"github.com/awantoch/geminiproxy/telemetry"
)

// proxyHandlerName labels the proxy route in metrics and spans.
const proxyHandlerName = "geminiProxy"

// NewMux routes the proxy, health and metrics endpoints.
// The proxy route accepts every method so non-POST requests get the 405 body.
func NewMux(deps *core.Dependencies) *http.ServeMux {
	route := constants.DefaultProxyRoute
	if deps.Config != nil && deps.Config.HTTP.Route != "" {
		route = deps.Config.HTTP.Route
	}

	mux := http.NewServeMux()
	mux.Handle(route, telemetry.WrapHandler(proxyHandlerName, deps.Handler))
	mux.HandleFunc(constants.HealthRoute, healthHandler)
	mux.Handle(constants.MetricsRoute, telemetry.MetricsHandler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.Write([]byte(constants.ResponseHealthy))
}

// StartServer runs the standalone proxy on cfg.Addr() until ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Init(cfg)
	if err != nil {
		return logger.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shut down tracing: %v", err)
		}
	}()

	deps, cleanup, err := core.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return logger.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}
	logger.Info("Gemini proxy listening on %s, route %s", ln.Addr(), cfg.HTTP.Route)
	return Serve(ctx, ln, NewMux(deps))
}

// Serve handles connections on ln until ctx is done, then drains in-flight
// requests for up to constants.DefaultShutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down Gemini proxy")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return logger.Errorf("graceful shutdown failed: %w", err)
		}
		<-errCh
		return nil
	}
}
