package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/awantoch/geminiproxy/logger"
)

// Call is one request received by an Upstream.
type Call struct {
	Method      string
	Path        string
	Key         string
	ContentType string
	Body        []byte
}

// Upstream is an httptest server standing in for the generative-language API.
// It answers every request with the same status and body.
type Upstream struct {
	*httptest.Server

	mu    sync.Mutex
	calls []Call
}

// NewUpstream starts an Upstream that is closed when the test ends.
func NewUpstream(t testing.TB, status int, body string) *Upstream {
	t.Helper()
	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.calls = append(u.calls, Call{
			Method:      r.Method,
			Path:        r.URL.Path,
			Key:         r.URL.Query().Get("key"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        b,
		})
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(u.Close)
	return u
}

// Calls returns the number of requests received so far.
func (u *Upstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

// Last returns the most recent request. It fails the test if there was none.
func (u *Upstream) Last(t testing.TB) Call {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.calls) == 0 {
		t.Fatal("upstream received no requests")
	}
	return u.calls[len(u.calls)-1]
}

// SyncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLogs sends all log output to the returned buffer until the test ends.
// Handlers running on server goroutines may log while the test reads it.
func CaptureLogs(t testing.TB) *SyncBuffer {
	t.Helper()
	buf := &SyncBuffer{}
	logger.SetInternalOutput(buf)
	t.Cleanup(func() { logger.SetLevel("info") })
	return buf
}
