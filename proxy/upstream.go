package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/awantoch/geminiproxy/constants"
)

const redacted = "REDACTED"

// Response is the upstream answer, relayed without modification.
type Response struct {
	Status int
	Body   []byte
}

// Forwarder issues the single outbound call for a validated request.
type Forwarder interface {
	Forward(ctx context.Context, model, credential string, payload []byte) (*Response, error)
}

// Client calls the generateContent endpoint of the generative-language API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Forwarder = (*Client)(nil)

// NewClient returns a client for baseURL. A nil httpClient gets one with timeout;
// a non-nil one is used as is.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Endpoint builds {base}/v1beta/models/{model}:generateContent?key={credential}.
func (c *Client) Endpoint(model, credential string) string {
	q := url.Values{}
	q.Set(constants.UpstreamKeyParam, credential)
	return fmt.Sprintf("%s/%s/models/%s:%s?%s",
		c.baseURL,
		constants.UpstreamAPIVersion,
		url.PathEscape(model),
		constants.UpstreamMethod,
		q.Encode(),
	)
}

// Forward POSTs payload verbatim and returns the upstream status and body.
// The body must be JSON; anything else is an error. Errors never contain the credential.
func (c *Client) Forward(ctx context.Context, model, credential string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(model, credential), bytes.NewReader(payload))
	if err != nil {
		return nil, redactError(fmt.Errorf("failed to create request: %w", err), credential)
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactError(err, credential)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, redactError(fmt.Errorf("failed to read upstream response: %w", err), credential)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream returned a non-JSON body (status %d)", resp.StatusCode)
	}
	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// redactError strips the credential from err's message while keeping the chain
// for errors.Is / errors.As.
func redactError(err error, credential string) error {
	if err == nil || credential == "" {
		return err
	}
	msg := err.Error()
	clean := strings.ReplaceAll(msg, credential, redacted)
	if escaped := url.QueryEscape(credential); escaped != credential {
		clean = strings.ReplaceAll(clean, escaped, redacted)
	}
	if clean == msg {
		return err
	}
	return &redactedError{msg: clean, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// IsTimeout reports whether err came from the upstream deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
