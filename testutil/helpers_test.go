package testutil

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/geminiproxy/logger"
)

func TestCaptureLogs_ConcurrentWritesAndReads(t *testing.T) {
	logs := CaptureLogs(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("line from worker")
				_ = logs.String()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, strings.Count(logs.String(), "line from worker"))
}

func TestUpstream_RecordsCalls(t *testing.T) {
	u := NewUpstream(t, http.StatusAccepted, `{"ok":true}`)

	resp, err := http.Post(u.URL+"/v1beta/models/m:generateContent?key=k", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Equal(t, 1, u.Calls())
	call := u.Last(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/v1beta/models/m:generateContent", call.Path)
	assert.Equal(t, "k", call.Key)
	assert.Equal(t, `{"a":1}`, string(call.Body))
}
