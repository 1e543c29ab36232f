package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/geminiproxy/testutil"
)

func TestClientEndpoint(t *testing.T) {
	c := NewClient("https://generativelanguage.googleapis.com/", nil, time.Second)
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=abc",
		c.Endpoint("gemini-2.0-flash", "abc"))

	// Path and query are escaped so a model name cannot reshape the URL.
	u, err := url.Parse(c.Endpoint("../files?x=1", "a&b"))
	require.NoError(t, err)
	assert.Equal(t, "a&b", u.Query().Get("key"))
	assert.Empty(t, u.Query().Get("x"))
}

func TestClientForward(t *testing.T) {
	upstream := testutil.NewUpstream(t, http.StatusCreated, `{"candidates":[]}`)
	c := NewClient(upstream.URL, nil, time.Second)

	resp, err := c.Forward(context.Background(), "m", "k", []byte(`{"contents":[]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, `{"candidates":[]}`, string(resp.Body))
	assert.Equal(t, `{"contents":[]}`, string(upstream.Last(t).Body))
}

func TestClientForward_UsesProvidedHTTPClient(t *testing.T) {
	upstream := testutil.NewUpstream(t, http.StatusOK, `{}`)
	var used bool
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true
		return http.DefaultTransport.RoundTrip(r)
	})}

	_, err := NewClient(upstream.URL, hc, time.Second).Forward(context.Background(), "m", "k", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, used)
}

func TestClientForward_ContextCanceled(t *testing.T) {
	upstream := testutil.NewUpstream(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(upstream.URL, nil, time.Second).Forward(ctx, "m", "secret-k", []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "secret-k")
}

func TestRedactError(t *testing.T) {
	base := errors.New(`Post "https://h/v1beta/models/m:generateContent?key=a%2Bb": EOF`)
	err := redactError(base, "a+b")
	assert.Equal(t, `Post "https://h/v1beta/models/m:generateContent?key=REDACTED": EOF`, err.Error())
	assert.ErrorIs(t, err, base)

	plain := errors.New("no secret here")
	assert.Same(t, plain, redactError(plain, "a+b"))
	assert.Nil(t, redactError(nil, "a+b"))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(&url.Error{Op: "Post", URL: "u", Err: context.DeadlineExceeded}))
	assert.False(t, IsTimeout(errors.New("refused")))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
