// Package handler provides HTTP handlers for the Hybrid Warden application.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/google/go-github/v73/github"
	"github.com/google/uuid"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/metrics"
)

const (
	eventPullRequest = "pull_request"
	eventPing        = "ping"

	defaultMaxPayloadBytes = 25 << 20
)

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	secret     []byte
	maxBytes   int64
	dispatcher core.JobDispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
// Metrics may be nil.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, m *metrics.Metrics, logger *slog.Logger) *WebhookHandler {
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	maxBytes := cfg.Server.MaxPayloadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxPayloadBytes
	}
	return &WebhookHandler{
		secret:     []byte(cfg.GitHub.WebhookSecret),
		maxBytes:   maxBytes,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests. Only signed pull_request deliveries with a
// tracked action reach the dispatcher; everything else is answered here.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deliveryID := github.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	eventType := github.WebHookType(r)
	logger := h.logger.With("delivery", deliveryID, "event", eventType)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, logger, http.StatusRequestEntityTooLarge, "Payload too large", err)
			return
		}
		h.reject(w, logger, http.StatusBadRequest, "Could not read payload", err)
		return
	}

	if err := VerifySignature(r.Header.Get(SignatureHeader), body, h.secret); err != nil {
		h.reject(w, logger, http.StatusUnauthorized, "Invalid signature", err)
		return
	}

	switch eventType {
	case eventPullRequest:
	case eventPing:
		h.ignore(w, logger, "ping")
		return
	default:
		h.ignore(w, logger, core.ErrNotPullRequest.Error())
		return
	}

	payload, err := payloadFromBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		h.reject(w, logger, http.StatusBadRequest, "Could not parse webhook", err)
		return
	}

	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		h.reject(w, logger, http.StatusBadRequest, "Could not parse webhook", err)
		return
	}
	prEvent, ok := parsed.(*github.PullRequestEvent)
	if !ok {
		h.reject(w, logger, http.StatusBadRequest, "Could not parse webhook", fmt.Errorf("unexpected payload type %T", parsed))
		return
	}

	reviewEvent, err := core.EventFromPullRequest(prEvent, deliveryID)
	switch {
	case errors.Is(err, core.ErrUntrackedAction):
		h.ignore(w, logger, err.Error())
		return
	case err != nil:
		h.reject(w, logger, http.StatusBadRequest, "Invalid pull request event", err)
		return
	}

	logger = logger.With("repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber, "action", reviewEvent.Action)
	if err := h.dispatcher.Dispatch(r.Context(), reviewEvent); err != nil {
		if errors.Is(err, core.ErrQueueFull) {
			// A 503 marks the delivery failed on GitHub, so it can be redelivered once the queue drains.
			h.reject(w, logger, http.StatusServiceUnavailable, "Review queue is full", err)
			return
		}
		h.reject(w, logger, http.StatusInternalServerError, "Failed to start review job", err)
		return
	}

	h.metrics.WebhookEvent(core.StateReceived)
	logger.Info("review job dispatched successfully", "state", core.StateReceived)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Review job accepted")
}

func (h *WebhookHandler) ignore(w http.ResponseWriter, logger *slog.Logger, reason string) {
	h.metrics.WebhookEvent(core.StateIgnored)
	logger.Debug("ignoring webhook", "state", core.StateIgnored, "reason", reason)
	_, _ = fmt.Fprint(w, "Event ignored")
}

func (h *WebhookHandler) reject(w http.ResponseWriter, logger *slog.Logger, status int, msg string, err error) {
	h.metrics.WebhookEvent(core.StateRejected)
	logger.Warn("rejecting webhook", "state", core.StateRejected, "status", status, "error", err)
	http.Error(w, msg, status)
}

// payloadFromBody returns the JSON document of a delivery. GitHub sends it either as
// the raw body or as the "payload" field of a form.
func payloadFromBody(contentType string, body []byte) ([]byte, error) {
	if contentType == "" {
		return body, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("invalid content type %q: %w", contentType, err)
	}

	switch mediaType {
	case "application/json":
		return body, nil
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid form payload: %w", err)
		}
		payload := form.Get("payload")
		if payload == "" {
			return nil, errors.New("form payload is empty")
		}
		return []byte(payload), nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}
}
