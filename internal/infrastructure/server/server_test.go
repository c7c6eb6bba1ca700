package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knowledgehub/internal/cost"
	"knowledgehub/internal/domain"
	slackinfra "knowledgehub/internal/infrastructure/slack"
	"knowledgehub/internal/usecase"
)

const (
	testSigningSecret   = "test-signing-secret"
	testSchedulerSecret = "test-scheduler-secret"
)

type channelProcessor struct {
	received chan domain.InboundMessage
}

func (p *channelProcessor) ProcessMessage(_ context.Context, msg domain.InboundMessage) {
	p.received <- msg
}

type stubBrowser struct{}

func (stubBrowser) RecentEntries(_ context.Context, _ time.Time) ([]domain.EntrySummary, error) {
	return nil, nil
}

type stubMessenger struct{}

func (stubMessenger) PostMessage(_ context.Context, _, _ string) error { return nil }

// newTestServer stands up the full route tree behind httptest and
// returns the base URL plus the processor sink for event assertions.
func newTestServer(t *testing.T, schedulerSecret string) (string, *channelProcessor) {
	t.Helper()
	log := zap.NewNop()

	proc := &channelProcessor{received: make(chan domain.InboundMessage, 1)}
	events := slackinfra.NewEventHandler("U0OWNER", slackinfra.NewResolver(log), proc, log)

	digest := usecase.NewDigest(usecase.DigestDeps{
		Browser:   stubBrowser{},
		Messenger: stubMessenger{},
		Tracker:   cost.NewTracker(),
		Channel:   "U0OWNER",
		CostLimit: 1.0,
		Logger:    log,
	})

	s := New("127.0.0.1:0", testSigningSecret, schedulerSecret, events, digest, log)
	srv := httptest.NewServer(s.http.Handler)
	t.Cleanup(srv.Close)
	return srv.URL, proc
}

// postSigned sends body to the events endpoint with a valid (or
// deliberately broken) Slack signature.
func postSigned(t *testing.T, baseURL, body, secret string, header map[string]string) *http.Response {
	t.Helper()

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)

	req, err := http.NewRequest(http.MethodPost, baseURL+"/slack/events", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func messageEventBody(user, text string) string {
	payload := map[string]any{
		"type": "event_callback",
		"event": map[string]any{
			"type":    "message",
			"user":    user,
			"text":    text,
			"channel": "C0CHANNEL",
			"ts":      "1725000000.000100",
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	resp, err := http.Get(baseURL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeJSON(t, resp)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "knowledge-hub", payload["service"])
}

func TestURLVerificationChallenge(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	body := `{"type":"url_verification","challenge":"chal-123"}`
	resp := postSigned(t, baseURL, body, testSigningSecret, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeJSON(t, resp)
	assert.Equal(t, "chal-123", payload["challenge"])
}

func TestBadSignatureRejected(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	resp := postSigned(t, baseURL, messageEventBody("U0OWNER", "hi"), "wrong-secret", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessageEventDispatched(t *testing.T) {
	t.Parallel()

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	baseURL, proc := newTestServer(t, testSchedulerSecret)
	body := messageEventBody("U0OWNER", fmt.Sprintf("<%s/article>", target.URL))
	resp := postSigned(t, baseURL, body, testSigningSecret, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	select {
	case msg := <-proc.received:
		assert.Equal(t, []string{target.URL + "/article"}, msg.URLs)
		assert.Equal(t, "C0CHANNEL", msg.Channel)
	case <-time.After(5 * time.Second):
		t.Fatal("message event never reached the processor")
	}
}

func TestSlackRetryAckedWithoutReprocessing(t *testing.T) {
	t.Parallel()

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	baseURL, proc := newTestServer(t, testSchedulerSecret)
	body := messageEventBody("U0OWNER", fmt.Sprintf("<%s/article>", target.URL))
	resp := postSigned(t, baseURL, body, testSigningSecret, map[string]string{
		"X-Slack-Retry-Num": "1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	select {
	case <-proc.received:
		t.Fatal("retry delivery must not be reprocessed")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSchedulerEndpointsRequireSecret(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	for _, path := range []string{"/digest", "/cost-check"} {
		t.Run(path, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, baseURL+path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestEmptyConfiguredSchedulerSecretRejectsAll(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, "")
	req, err := http.NewRequest(http.MethodPost, baseURL+"/digest", nil)
	require.NoError(t, err)
	req.Header.Set("X-Scheduler-Secret", "")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDigestEndpoint(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	req, err := http.NewRequest(http.MethodPost, baseURL+"/digest", nil)
	require.NoError(t, err)
	req.Header.Set("X-Scheduler-Secret", testSchedulerSecret)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeJSON(t, resp)
	assert.Equal(t, "sent", payload["status"])
	assert.Equal(t, float64(0), payload["entries"])
}

func TestCostCheckEndpoint(t *testing.T) {
	t.Parallel()

	baseURL, _ := newTestServer(t, testSchedulerSecret)
	req, err := http.NewRequest(http.MethodPost, baseURL+"/cost-check", nil)
	require.NoError(t, err)
	req.Header.Set("X-Scheduler-Secret", testSchedulerSecret)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeJSON(t, resp)
	assert.Equal(t, "ok", payload["status"])
}
