package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"knowledgehub/internal/config"
	"knowledgehub/internal/cost"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/infrastructure/extraction"
	"knowledgehub/internal/infrastructure/llm"
	"knowledgehub/internal/infrastructure/notion"
	"knowledgehub/internal/infrastructure/server"
	slackinfra "knowledgehub/internal/infrastructure/slack"
	"knowledgehub/internal/logging"
	"knowledgehub/internal/usecase"
)

// Application wires configs to adapters, use cases, and the HTTP server.
// Every collaborator is constructed exactly once here and injected.
type Application struct {
	cfg    config.Config
	server *server.Server
	log    *zap.Logger
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *zap.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	paywall := extraction.NewPaywallMatcher(cfg.Extraction.PaywalledDomains)

	registry := extraction.NewRegistry(extraction.NewArticleExtractor(httpClient, paywall))
	registry.Register(domain.TypeVideo, extraction.NewYouTubeExtractor(httpClient, baseLogger.Named("extraction.youtube")))
	registry.Register(domain.TypePDF, extraction.NewPDFExtractor(httpClient))
	extractor := extraction.NewEngine(registry, baseLogger.Named("extraction"))

	model, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("build model client: %w", err)
	}
	tracker := cost.NewTracker()
	analyzer := llm.NewEngine(model, tracker, baseLogger.Named("llm"))

	store, err := notion.NewAPIStore(cfg.Notion.APIKey, cfg.Notion.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("build knowledge store: %w", err)
	}
	writer := notion.NewWriter(store, notion.NewTagCache(), baseLogger.Named("notion"))

	notifier := slackinfra.NewNotifier(cfg.Slack.BotToken, baseLogger.Named("slack"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor: extractor,
		Analyzer:  analyzer,
		Writer:    writer,
		Notifier:  notifier,
		Budget:    time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
		Logger:    baseLogger.Named("pipeline"),
	})

	digest := usecase.NewDigest(usecase.DigestDeps{
		Browser:   store,
		Messenger: notifier,
		Tracker:   tracker,
		Channel:   cfg.Slack.AllowedUserID,
		CostLimit: cfg.Digest.DailyCostLimitUSD,
		Logger:    baseLogger.Named("digest"),
	})

	events := slackinfra.NewEventHandler(
		cfg.Slack.AllowedUserID,
		slackinfra.NewResolver(baseLogger.Named("slack.resolver")),
		pipeline,
		baseLogger.Named("slack.events"),
	)

	srv := server.New(
		net.JoinHostPort("", cfg.Server.Port),
		cfg.Slack.SigningSecret,
		cfg.Digest.SchedulerSecret,
		events,
		digest,
		baseLogger.Named("server"),
	)

	return &Application{cfg: cfg, server: srv, log: baseLogger}, nil
}

// Run serves HTTP until the context is canceled, then drains.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
