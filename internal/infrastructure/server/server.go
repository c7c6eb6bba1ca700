// Package server exposes the HTTP surface: the event subscription
// endpoint, scheduler triggers, and a health probe.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	slackinfra "knowledgehub/internal/infrastructure/slack"
	"knowledgehub/internal/usecase"
)

// Server routes inbound HTTP traffic to the event handler and the
// reporting usecases.
type Server struct {
	signingSecret   string
	schedulerSecret string
	events          *slackinfra.EventHandler
	digest          *usecase.Digest
	log             *zap.Logger

	http *http.Server
}

// New builds the server with all routes mounted.
func New(addr, signingSecret, schedulerSecret string, events *slackinfra.EventHandler, digest *usecase.Digest, log *zap.Logger) *Server {
	s := &Server{
		signingSecret:   signingSecret,
		schedulerSecret: schedulerSecret,
		events:          events,
		digest:          digest,
		log:             log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/slack/events", s.handleSlackEvents)
	r.Post("/digest", s.requireScheduler(s.handleDigest))
	r.Post("/cost-check", s.requireScheduler(s.handleCostCheck))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "knowledge-hub",
	})
}

// handleSlackEvents verifies the request signature, answers URL
// verification challenges, and dispatches message events. Slack retries
// (X-Slack-Retry-Num) are acked without reprocessing: the first
// delivery already dispatched the work.
func (s *Server) handleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, err := s.verifiedBody(r)
	if err != nil {
		s.log.Warn("rejected event request", zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.log.Warn("unparseable event payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge.Challenge})
		return

	case slackevents.CallbackEvent:
		if r.Header.Get("X-Slack-Retry-Num") == "" {
			if msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent); ok {
				s.events.OnMessage(msg)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// verifiedBody reads the request body and checks the Slack signature.
func (s *Server) verifiedBody(r *http.Request) ([]byte, error) {
	verifier, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.TeeReader(r.Body, &verifier))
	if err != nil {
		return nil, err
	}
	if err := verifier.Ensure(); err != nil {
		return nil, err
	}
	return body, nil
}

// requireScheduler guards an endpoint behind the shared scheduler
// secret; a missing configured secret rejects everything.
func (s *Server) requireScheduler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Scheduler-Secret")
		if s.schedulerSecret == "" ||
			subtle.ConstantTimeCompare([]byte(got), []byte(s.schedulerSecret)) != 1 {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid scheduler secret"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	entries, err := s.digest.SendWeekly(r.Context())
	if err != nil {
		s.log.Error("digest failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "error",
			"error":   err.Error(),
			"entries": entries,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "sent",
		"entries": entries,
	})
}

func (s *Server) handleCostCheck(w http.ResponseWriter, r *http.Request) {
	costUSD, alerted, err := s.digest.CheckDailyCost(r.Context())
	if err != nil {
		s.log.Error("cost check failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "error",
			"error":  err.Error(),
			"cost":   costUSD,
		})
		return
	}
	status := "ok"
	if alerted {
		status = "alert_sent"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"cost":   costUSD,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
