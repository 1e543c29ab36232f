package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a proxied exchange ended.
type Outcome string

const (
	OutcomeRelayed          Outcome = "relayed"
	OutcomeMethodNotAllowed Outcome = "method_not_allowed"
	OutcomeBadRequest       Outcome = "bad_request"
	OutcomeTooLarge         Outcome = "too_large"
	OutcomeConfigError      Outcome = "config_error"
	OutcomeUpstreamError    Outcome = "upstream_error"
)

// Exchange is the audit view of one inbound request. It never holds the
// payload, the upstream body or the credential.
type Exchange struct {
	ID        uuid.UUID     `json:"id"`
	RequestID string        `json:"request_id"`
	Model     string        `json:"model,omitempty"`
	Status    int           `json:"status"`
	Outcome   Outcome       `json:"outcome"`
	Duration  time.Duration `json:"duration"`
	At        time.Time     `json:"at"`
	Error     string        `json:"error,omitempty"`
}

// NewExchange stamps a fresh exchange with an id and start time.
func NewExchange(requestID string, at time.Time) *Exchange {
	return &Exchange{
		ID:        uuid.New(),
		RequestID: requestID,
		At:        at,
	}
}

// Failed reports whether the exchange ended in one of the local error kinds.
func (e *Exchange) Failed() bool {
	return e.Outcome != OutcomeRelayed
}
