package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/logger"
	"github.com/awantoch/geminiproxy/model"
)

// SecretsProvider resolves the upstream credential at call time.
type SecretsProvider interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// Recorder receives one exchange per request after the response is written.
type Recorder interface {
	Record(ctx context.Context, ex *model.Exchange) error
}

type Options struct {
	Secrets SecretsProvider
	// APIKeyName is the secret name of the credential, e.g. GEMINI_API_KEY.
	APIKeyName string
	Upstream   Forwarder
	// Recorder is optional.
	Recorder Recorder
	// MaxBodyBytes caps the inbound body; 0 disables the cap.
	MaxBodyBytes int64
	// AllowOrigin enables CORS headers and OPTIONS preflight when non-empty.
	AllowOrigin string
	// Now is overridable in tests.
	Now func() time.Time
}

// Handler validates the inbound request, injects the credential and relays
// the single upstream call.
type Handler struct {
	opts Options
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(opts Options) *Handler {
	if opts.APIKeyName == "" {
		opts.APIKeyName = constants.EnvAPIKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{opts: opts}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := h.opts.Now()
	reqID := r.Header.Get(constants.HeaderRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx := logger.WithRequestID(r.Context(), reqID)
	w := &responseWriter{ResponseWriter: rw}
	w.Header().Set(constants.HeaderRequestID, reqID)

	ex := model.NewExchange(reqID, start)
	defer func() {
		rec := recover()
		if rec != nil && rec != http.ErrAbortHandler {
			logger.ErrorCtx(ctx, constants.LogRecoveredPanic, "panic", rec)
			perr := &Error{Kind: KindUpstream, Err: fmt.Errorf("%v", rec)}
			if w.wrote {
				// The status is already on the wire; only the record can reflect the failure.
				ex.Outcome = perr.Outcome()
				ex.Error = perr.Message()
			} else {
				h.fail(ctx, w, ex, perr)
			}
		}
		ex.Duration = h.opts.Now().Sub(start)
		h.record(ctx, ex)
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
	}()

	if h.opts.AllowOrigin != "" {
		h.writeCORS(w)
		if r.Method == http.MethodOptions {
			ex.Status = http.StatusNoContent
			ex.Outcome = model.OutcomeRelayed
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	if r.Method != http.MethodPost {
		h.fail(ctx, w, ex, &Error{Kind: KindMethod})
		return
	}

	credential, err := h.credential(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Sprintf(constants.LogMissingCredential, h.opts.APIKeyName), "error", err)
		h.fail(ctx, w, ex, &Error{Kind: KindConfig, Err: err})
		return
	}

	req, err := readRequest(rw, r, h.opts.MaxBodyBytes)
	if err != nil {
		h.fail(ctx, w, ex, err)
		return
	}
	ex.Model = req.Model

	resp, err := h.opts.Upstream.Forward(ctx, req.Model, credential, req.GeminiPayload)
	if err != nil {
		logger.ErrorCtx(ctx, constants.LogProxyInternalError, "model", req.Model, "error", err, "timeout", IsTimeout(err))
		h.fail(ctx, w, ex, &Error{Kind: KindUpstream, Err: err})
		return
	}

	ex.Status = resp.Status
	ex.Outcome = model.OutcomeRelayed
	logger.DebugCtx(ctx, "relaying upstream response", "model", req.Model, "status", resp.Status, "bytes", len(resp.Body))
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		logger.WarnCtx(ctx, fmt.Sprintf(constants.LogFailedWriteResponse, err))
	}
}

var errNoCredential = errors.New("credential is empty")

func (h *Handler) credential(ctx context.Context) (string, error) {
	if h.opts.Secrets == nil {
		return "", errors.New("no secrets provider configured")
	}
	credential, err := h.opts.Secrets.GetSecret(ctx, h.opts.APIKeyName)
	if err != nil {
		return "", err
	}
	if credential == "" {
		return "", errNoCredential
	}
	return credential, nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, ex *model.Exchange, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = &Error{Kind: KindUpstream, Err: err}
	}
	ex.Status = perr.Status()
	ex.Outcome = perr.Outcome()
	if perr.Kind != KindConfig {
		ex.Error = perr.Message()
	}
	writeError(ctx, w, perr.Status(), perr.Message())
}

func (h *Handler) writeCORS(w http.ResponseWriter) {
	w.Header().Set(constants.HeaderAllowOrigin, h.opts.AllowOrigin)
	w.Header().Set(constants.HeaderAllowMethods, constants.CORSAllowedMethods)
	w.Header().Set(constants.HeaderAllowHeaders, constants.CORSAllowedHeaders)
	if h.opts.AllowOrigin != "*" {
		w.Header().Add(constants.HeaderVary, constants.HeaderVaryOriginValue)
	}
}

func (h *Handler) record(ctx context.Context, ex *model.Exchange) {
	if h.opts.Recorder == nil {
		return
	}
	if err := h.opts.Recorder.Record(ctx, ex); err != nil {
		logger.WarnCtx(ctx, constants.LogFailedRecordAudit, "error", err)
	}
}

// responseWriter notes whether the response has started.
type responseWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logger.WarnCtx(ctx, fmt.Sprintf(constants.LogFailedWriteResponse, err))
	}
}
