package proxy

import (
	"fmt"
	"net/http"

	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/model"
)

// Kind is the class of a locally produced failure.
type Kind int

const (
	// KindMethod is a non-POST request.
	KindMethod Kind = iota + 1
	// KindBadRequest is a body without a model or payload.
	KindBadRequest
	// KindTooLarge is a body over the configured cap.
	KindTooLarge
	// KindConfig is a missing credential. Details go to the operator log only.
	KindConfig
	// KindUpstream covers transport failures and non-JSON upstream bodies.
	KindUpstream
)

// Error is returned by the handler steps and rendered as {"error": Message()}.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the HTTP status the caller receives.
func (e *Error) Status() int {
	switch e.Kind {
	case KindMethod:
		return http.StatusMethodNotAllowed
	case KindBadRequest:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing text. Only KindUpstream exposes the cause.
func (e *Error) Message() string {
	switch e.Kind {
	case KindMethod:
		return constants.ResponseMethodNotAllowed
	case KindBadRequest:
		return constants.ResponseMissingFields
	case KindTooLarge:
		return constants.ResponseBodyTooLarge
	case KindConfig:
		return constants.ResponseServerConfigError
	default:
		cause := constants.ResponseUnknownError
		if e.Err != nil && e.Err.Error() != "" {
			cause = e.Err.Error()
		}
		return fmt.Sprintf(constants.ResponseProxyInternalError, cause)
	}
}

// Outcome maps the kind onto the audit classification.
func (e *Error) Outcome() model.Outcome {
	switch e.Kind {
	case KindMethod:
		return model.OutcomeMethodNotAllowed
	case KindBadRequest:
		return model.OutcomeBadRequest
	case KindTooLarge:
		return model.OutcomeTooLarge
	case KindConfig:
		return model.OutcomeConfigError
	default:
		return model.OutcomeUpstreamError
	}
}
