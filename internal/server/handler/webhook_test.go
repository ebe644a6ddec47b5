package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/mocks"
)

const (
	testSecret = "webhook-secret"
	testSHA    = "0123456789abcdef0123456789abcdef01234567"
)

func pullRequestPayload(action, headSHA string) string {
	return `{
		"action": "` + action + `",
		"number": 7,
		"pull_request": {"number": 7, "title": "Add views", "head": {"sha": "` + headSHA + `"}},
		"repository": {"name": "app", "full_name": "octo/app", "owner": {"login": "octo"}},
		"sender": {"login": "dev"},
		"installation": {"id": 42}
	}`
}

func newTestHandler(t *testing.T, maxBytes int64) (*WebhookHandler, *mocks.MockJobDispatcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	dispatcher := mocks.NewMockJobDispatcher(ctrl)
	cfg := &config.Config{
		Server: config.ServerConfig{MaxPayloadBytes: maxBytes},
		GitHub: config.GitHubConfig{WebhookSecret: testSecret},
	}
	return NewWebhookHandler(cfg, dispatcher, nil, slog.New(slog.DiscardHandler)), dispatcher
}

func newDelivery(eventType, contentType, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

func signed(eventType, body string) *http.Request {
	return newDelivery(eventType, "application/json", body, Sign([]byte(testSecret), []byte(body)))
}

func TestHandleDispatchesTrackedPullRequest(t *testing.T) {
	for _, action := range []string{"opened", "reopened", "synchronize"} {
		t.Run(action, func(t *testing.T) {
			h, dispatcher := newTestHandler(t, 0)
			dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, event *core.ReviewEvent) error {
					assert.Equal(t, "delivery-1", event.DeliveryID)
					assert.Equal(t, action, event.Action)
					assert.Equal(t, "octo", event.RepoOwner)
					assert.Equal(t, "app", event.RepoName)
					assert.Equal(t, "octo/app", event.RepoFullName)
					assert.Equal(t, 7, event.PRNumber)
					assert.Equal(t, testSHA, event.HeadSHA)
					assert.Equal(t, int64(42), event.InstallationID)
					return nil
				})

			rec := httptest.NewRecorder()
			h.Handle(rec, signed("pull_request", pullRequestPayload(action, testSHA)))

			assert.Equal(t, http.StatusAccepted, rec.Code)
		})
	}
}

func TestHandleFormEncodedPayload(t *testing.T) {
	h, dispatcher := newTestHandler(t, 0)
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil)

	body := url.Values{"payload": {pullRequestPayload("opened", testSHA)}}.Encode()
	req := newDelivery("pull_request", "application/x-www-form-urlencoded", body, Sign([]byte(testSecret), []byte(body)))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

// The dispatcher mock has no expectations in these cases: any dispatch fails the test.
func TestHandleRejectsWithoutDispatch(t *testing.T) {
	body := pullRequestPayload("opened", testSHA)
	tampered := strings.Replace(body, `"number": 7,`, `"number": 6,`, 1)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{
			name: "missing signature",
			req:  newDelivery("pull_request", "application/json", body, ""),
			want: http.StatusUnauthorized,
		},
		{
			name: "signature of different body",
			req:  newDelivery("pull_request", "application/json", tampered, Sign([]byte(testSecret), []byte(body))),
			want: http.StatusUnauthorized,
		},
		{
			name: "wrong secret",
			req:  newDelivery("pull_request", "application/json", body, Sign([]byte("nope"), []byte(body))),
			want: http.StatusUnauthorized,
		},
		{
			name: "malformed json",
			req:  signed("pull_request", `{"action": "opened",`),
			want: http.StatusBadRequest,
		},
		{
			name: "missing head commit",
			req:  signed("pull_request", pullRequestPayload("opened", "")),
			want: http.StatusBadRequest,
		},
		{
			name: "unsupported content type",
			req:  newDelivery("pull_request", "text/plain", body, Sign([]byte(testSecret), []byte(body))),
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, 0)
			rec := httptest.NewRecorder()
			h.Handle(rec, tt.req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleIgnoredEvents(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		body      string
	}{
		{name: "closed action", eventType: "pull_request", body: pullRequestPayload("closed", testSHA)},
		{name: "labeled action", eventType: "pull_request", body: pullRequestPayload("labeled", testSHA)},
		{name: "other event type", eventType: "issue_comment", body: `{"action":"created"}`},
		{name: "push event", eventType: "push", body: `{"ref":"refs/heads/main"}`},
		{name: "ping", eventType: "ping", body: `{"zen":"Keep it logically awesome."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, 0)
			rec := httptest.NewRecorder()
			h.Handle(rec, signed(tt.eventType, tt.body))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "ignored")
		})
	}
}

func TestHandleDispatchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "queue full", err: core.ErrQueueFull, want: http.StatusServiceUnavailable},
		{name: "other failure", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, dispatcher := newTestHandler(t, 0)
			dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(tt.err)

			rec := httptest.NewRecorder()
			h.Handle(rec, signed("pull_request", pullRequestPayload("opened", testSHA)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandlePayloadTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, 64)
	rec := httptest.NewRecorder()
	h.Handle(rec, signed("pull_request", pullRequestPayload("opened", testSHA)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleGeneratesDeliveryID(t *testing.T) {
	h, dispatcher := newTestHandler(t, 0)
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *core.ReviewEvent) error {
			assert.Len(t, event.DeliveryID, 36)
			return nil
		})

	req := signed("pull_request", pullRequestPayload("opened", testSHA))
	req.Header.Del("X-GitHub-Delivery")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}
