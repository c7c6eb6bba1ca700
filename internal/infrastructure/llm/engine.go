package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"knowledgehub/internal/cost"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
	"knowledgehub/internal/ports"
)

const (
	maxModelAttempts       = 4
	transcribeInstructions = "Transcribe this video as accurately as possible. " +
		"Include all spoken content. Add approximate timestamps every few minutes " +
		"in [MM:SS] format. Output only the transcript text, nothing else."
)

// Engine turns extracted content into a knowledge document through the
// model, with backoff on transient API failures.
type Engine struct {
	model   ModelClient
	tracker *cost.Tracker
	log     *zap.Logger

	// retryInterval seeds the exponential backoff; shortened in tests.
	retryInterval time.Duration
}

var _ ports.Analyzer = (*Engine)(nil)

// NewEngine creates an analysis engine backed by the given model client.
func NewEngine(model ModelClient, tracker *cost.Tracker, log *zap.Logger) *Engine {
	return &Engine{
		model:         model,
		tracker:       tracker,
		log:           log,
		retryInterval: time.Second,
	}
}

// Analyze produces a structured knowledge document for the content.
// Videos that arrive without a transcript are transcribed by the model
// first, with the transcription cost merged into the reported usage.
// All token usage is recorded in the tracker, including on failure.
func (e *Engine) Analyze(ctx context.Context, content domain.ExtractedContent) (domain.KnowledgeDocument, cost.TokenUsage, error) {
	var usage cost.TokenUsage
	defer func() { e.tracker.Add(usage) }()

	mediaFallback := content.ModelMediaFallback()
	if mediaFallback && content.Transcript == "" {
		e.log.Info("transcribing video via model", zap.String("url", content.URL))
		transcript, transcribeUsage, err := e.transcribe(ctx, content)
		usage = cost.Merge(usage, transcribeUsage)
		if err != nil {
			return domain.KnowledgeDocument{}, usage, err
		}
		if transcript != "" {
			content.Transcript = transcript
			content.WordCount = len(strings.Fields(transcript))
		}
	}

	system := BuildSystemPrompt(content)
	text, mediaURI := BuildUserContent(content)

	raw, callUsage, err := e.generate(ctx, GenerateRequest{
		System:      system,
		Text:        text,
		MediaURI:    mediaURI,
		Structured:  true,
		Temperature: 1.0,
	})
	usage = cost.Merge(usage, callUsage)
	if err != nil {
		return domain.KnowledgeDocument{}, usage, err
	}

	result, err := parseResult(raw)
	if err != nil {
		e.log.Error("model output failed validation",
			zap.String("url", content.URL), zap.Error(err))
		return domain.KnowledgeDocument{}, usage, err
	}

	e.log.Info("analysis complete",
		zap.String("url", content.URL),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.Float64("cost_usd", usage.CostUSD))

	return buildDocument(result, content, mediaFallback), usage, nil
}

// transcribe asks the model to watch the video natively and produce a
// plain transcript, fed back into the normal analysis path.
func (e *Engine) transcribe(ctx context.Context, content domain.ExtractedContent) (string, cost.TokenUsage, error) {
	var meta []string
	if content.Title != "" {
		meta = append(meta, "Title: "+content.Title)
	}
	if content.Author != "" {
		meta = append(meta, "Author: "+content.Author)
	}
	if content.Description != "" {
		meta = append(meta, "Description: "+content.Description)
	}
	prompt := strings.Join(meta, "\n") + "\n\n---\n" + transcribeInstructions

	return e.generate(ctx, GenerateRequest{
		Text:        prompt,
		MediaURI:    content.URL,
		Temperature: 0.2,
	})
}

// generate runs one model call with exponential backoff on server-side
// and rate-limit errors; anything else propagates immediately.
func (e *Engine) generate(ctx context.Context, req GenerateRequest) (string, cost.TokenUsage, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(e.retryInterval),
			backoff.WithMaxInterval(30*time.Second),
		),
		maxModelAttempts-1,
	), ctx)

	type callResult struct {
		raw   string
		usage cost.TokenUsage
	}

	var total cost.TokenUsage
	res, err := backoff.RetryNotifyWithData(func() (callResult, error) {
		raw, usage, err := e.model.Generate(ctx, req)
		total = cost.Merge(total, usage)
		if err != nil {
			if errs.RetryableModel(err) {
				return callResult{}, err
			}
			return callResult{}, backoff.Permanent(err)
		}
		return callResult{raw: raw, usage: usage}, nil
	}, policy, func(err error, wait time.Duration) {
		e.log.Warn("model call failed, retrying",
			zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return "", total, err
	}
	return res.raw, total, nil
}

// buildDocument combines model-generated fields with extraction-derived
// metadata. Extraction wins on author; partial extractions get their
// priority forced to Low unless the model watched the media itself.
func buildDocument(result modelResult, content domain.ExtractedContent, mediaFallback bool) domain.KnowledgeDocument {
	author := content.Author
	if author == "" && result.Author != nil {
		author = *result.Author
	}

	priority := domain.Priority(result.Priority)
	partial := content.ExtractionStatus == domain.StatusPartial ||
		content.ExtractionStatus == domain.StatusMetadataOnly
	if partial && !mediaFallback {
		priority = domain.PriorityLow
	}

	learnings := make([]domain.KeyLearning, len(result.KeyLearnings))
	for i, kl := range result.KeyLearnings {
		learnings[i] = domain.KeyLearning{
			Title:           kl.Title,
			What:            kl.What,
			WhyItMatters:    kl.WhyItMatters,
			HowToApply:      kl.HowToApply,
			ResourcesNeeded: kl.ResourcesNeeded,
			EstimatedTime:   kl.EstimatedTime,
		}
	}

	return domain.KnowledgeDocument{
		Entry: domain.KnowledgeEntry{
			Title:       result.Title,
			Category:    domain.Category(result.Category),
			ContentType: content.ContentType,
			Source:      content.URL,
			Author:      author,
			DateAdded:   time.Now().UTC(),
			Status:      domain.StatusNew,
			Priority:    priority,
			Tags:        result.Tags,
			Summary:     result.Summary,
		},
		SummarySection: result.SummarySection,
		KeyPoints:      result.KeyPoints,
		KeyLearnings:   learnings,
		DetailedNotes:  result.DetailedNotes,
	}
}
