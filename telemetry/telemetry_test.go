package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/awantoch/geminiproxy/config"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		tracing *config.TracingConfig
		wantErr bool
	}{
		{"no tracing section", nil, false},
		{"none", &config.TracingConfig{Exporter: "none"}, false},
		{"stdout", &config.TracingConfig{ServiceName: "test-service", Exporter: "stdout"}, false},
		{"otlp host:port", &config.TracingConfig{Exporter: "otlp", Endpoint: "localhost:4318"}, false},
		{"otlp url", &config.TracingConfig{Exporter: "otlp", Endpoint: "http://localhost:4318"}, false},
		{"otlp default endpoint", &config.TracingConfig{Exporter: "otlp"}, false},
		{"unknown", &config.TracingConfig{Exporter: "jaeger"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Init(&config.Config{Tracing: tt.tracing})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, shutdown)
			// Nothing was exported, so shutdown does not touch the network.
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestWrapHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("test response"))
	})
	wrapped := WrapHandler("wrap-test", inner)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("wrap-test", "POST", "418"))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("wrap-test", "POST", "418")))
}

func TestTransportCountsUpstreamCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	before := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("429"))
	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("429")))

	srv.Close()
	beforeErr := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("error"))
	_, err = client.Post(srv.URL, "application/json", strings.NewReader(`{}`))
	require.Error(t, err)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("error")))
}

func TestMetricsHandler(t *testing.T) {
	WrapHandler("metrics-test", http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "geminiproxy_http_requests_total")
}

// exportSpans installs a synchronous stdout exporter writing into the returned
// buffer and restores the previous globals when the test ends.
func exportSpans(t *testing.T) (*bytes.Buffer, *sdktrace.TracerProvider) {
	t.Helper()
	var buf bytes.Buffer
	exp, err := stdouttrace.New(stdouttrace.WithWriter(&buf))
	require.NoError(t, err)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return &buf, tp
}

func TestTransportSpanRedactsKey(t *testing.T) {
	const key = "SUPERSECRETKEY"
	buf, tp := exportSpans(t)

	traceparent := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent <- r.Header.Get("traceparent")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Post(srv.URL+"/v1beta/models/m:generateContent?key="+key, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	require.NoError(t, tp.ForceFlush(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "url.full")
	assert.Contains(t, out, "generateContent?key=REDACTED")
	assert.NotContains(t, out, key)
	assert.NotEmpty(t, <-traceparent, "trace context should propagate to the upstream")
}

func TestTransportSpanRedactsKeyOnError(t *testing.T) {
	const key = "SUPERSECRETKEY"
	buf, tp := exportSpans(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/v1beta/models/m:generateContent?key=" + key
	srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	_, err := client.Post(target, "application/json", strings.NewReader(`{}`))
	require.Error(t, err)
	require.NoError(t, tp.ForceFlush(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Code":"Error"`)
	assert.NotContains(t, out, key)
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://user:pw@example.com/v1beta/models/m:generateContent?key=a%26b&alt=sse")
	require.NoError(t, err)
	got := redactURL(u)
	assert.Equal(t, "https://example.com/v1beta/models/m:generateContent?alt=sse&key=REDACTED", got)
	assert.Equal(t, "a&b", u.Query().Get("key"), "the request URL itself is untouched")

	plain, _ := url.Parse("https://example.com/healthz")
	assert.Equal(t, "https://example.com/healthz", redactURL(plain))

	assert.Equal(t, "dial REDACTED failed REDACTED", redactKey("dial a%26b failed a&b", "a&b"))
}
