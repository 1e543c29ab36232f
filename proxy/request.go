package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request is the inbound body. The payload stays raw so it is forwarded as sent.
type Request struct {
	Model         string          `json:"model"`
	GeminiPayload json.RawMessage `json:"geminiPayload"`
}

const requestSchemaJSON = `{
	"type": "object",
	"required": ["model", "geminiPayload"],
	"properties": {
		"model": {"type": "string", "minLength": 1},
		"geminiPayload": {"type": "object"}
	}
}`

var requestSchema = jsonschema.MustCompileString("geminiproxy-request.schema.json", requestSchemaJSON)

// readRequest reads at most limit bytes (0 means unlimited) and validates the shape.
func readRequest(w http.ResponseWriter, r *http.Request, limit int64) (*Request, error) {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &Error{Kind: KindTooLarge, Err: err}
		}
		return nil, &Error{Kind: KindBadRequest, Err: err}
	}
	return DecodeRequest(data)
}

// DecodeRequest parses and validates an inbound body.
func DecodeRequest(data []byte) (*Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Kind: KindBadRequest, Err: err}
	}
	if err := requestSchema.Validate(doc); err != nil {
		return nil, &Error{Kind: KindBadRequest, Err: err}
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &Error{Kind: KindBadRequest, Err: err}
	}
	return &req, nil
}
