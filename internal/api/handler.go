package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/eugenenazirov/grafana-to-ntfy/internal/notify"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// maxBodyBytes caps the webhook body at 2 MiB.
const maxBodyBytes = 2 << 20

// Forwarder delivers an encoded ntfy message to the destination service.
type Forwarder interface {
	Forward(ctx context.Context, body []byte) (*notify.Result, error)
}

// Handler translates alert webhooks into ntfy messages.
type Handler struct {
	forwarder Forwarder
	topic     string
	// expectedAuth is "Bearer <key>", empty when authentication is disabled.
	expectedAuth string
	logger       *zap.Logger
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithAuthKey requires callers to send "Authorization: Bearer <key>".
// An empty key leaves the endpoint open.
func WithAuthKey(key string) HandlerOption {
	return func(h *Handler) {
		if key == "" {
			h.expectedAuth = ""
			return
		}
		h.expectedAuth = "Bearer " + key
	}
}

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler publishing to topic through forwarder.
func NewHandler(forwarder Forwarder, topic string, opts ...HandlerOption) *Handler {
	h := &Handler{
		forwarder: forwarder,
		topic:     topic,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(zap.String("request_id", requestIDFromContext(r.Context())))

	if !h.authorized(r) {
		logger.Debug("rejected webhook: bad or missing authorization")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("webhook body too large", zap.Int64("limit", tooLarge.Limit))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn("failed to read webhook body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg, err := notify.BuildMessage(h.topic, payload)
	if err != nil {
		logger.Debug("rejected webhook", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := msg.Encode()
	if err != nil {
		logger.Error("failed to encode ntfy message", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	logger.Debug("ntfy message", zap.ByteString("message", body))

	// The alert source's disconnect must not abort delivery.
	res, err := h.forwarder.Forward(context.WithoutCancel(r.Context()), body)
	if err != nil {
		logger.Warn("forwarding failed", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if res != nil && res.StatusCode >= http.StatusBadRequest {
		logger.Warn("ntfy responded with error status", zap.Int("status", res.StatusCode))
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.expectedAuth == "" {
		return true
	}
	values, ok := r.Header[http.CanonicalHeaderKey("Authorization")]
	if !ok || len(values) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(values[0]), []byte(h.expectedAuth)) == 1
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
