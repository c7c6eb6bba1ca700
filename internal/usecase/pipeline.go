package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/ports"
)

const (
	reactionSuccess = "white_check_mark"
	reactionFailure = "x"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Extractor ports.ContentExtractor
	Analyzer  ports.Analyzer
	Writer    ports.KnowledgeWriter
	Notifier  ports.Notifier
	Budget    time.Duration
	Logger    *zap.Logger
}

// Pipeline implements the URL-ingestion workflow: extract, analyze,
// persist, notify. URLs are processed sequentially and independently;
// one failure never aborts the rest of the message.
type Pipeline struct {
	extractor ports.ContentExtractor
	analyzer  ports.Analyzer
	writer    ports.KnowledgeWriter
	notifier  ports.Notifier
	budget    time.Duration
	log       *zap.Logger
}

var _ ports.MessageProcessor = (*Pipeline)(nil)

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor: deps.Extractor,
		analyzer:  deps.Analyzer,
		writer:    deps.Writer,
		notifier:  deps.Notifier,
		budget:    deps.Budget,
		log:       deps.Logger,
	}
}

// ProcessMessage runs every URL of the message through the pipeline and
// finishes with exactly one reaction on the original message: the
// success marker only if no URL failed. Duplicates count as successes.
func (p *Pipeline) ProcessMessage(ctx context.Context, msg domain.InboundMessage) {
	allSucceeded := true
	for _, url := range msg.URLs {
		if !p.processURL(ctx, msg, url) {
			allSucceeded = false
		}
	}

	reaction := reactionSuccess
	if !allSucceeded {
		reaction = reactionFailure
	}
	p.notifier.AddReaction(ctx, msg.Channel, msg.Timestamp, reaction)
}

// processURL runs one URL through all stages, reporting exactly one
// outcome notification. A panic anywhere in the stages is contained
// here and reported as a processing failure.
func (p *Pipeline) processURL(ctx context.Context, msg domain.InboundMessage, url string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("pipeline panic",
				zap.String("url", url),
				zap.Any("panic", r))
			p.notifier.NotifyError(ctx, msg.Channel, msg.Timestamp, url,
				"processing", fmt.Sprintf("%v", r))
			ok = false
		}
	}()

	content := p.extractor.Extract(ctx, url, p.budget)
	if content.ExtractionStatus == domain.StatusFailed {
		p.notifier.NotifyError(ctx, msg.Channel, msg.Timestamp, url,
			"extraction", "Content could not be extracted")
		return false
	}
	content.UserNote = msg.UserNote

	doc, usage, err := p.analyzer.Analyze(ctx, content)
	if err != nil {
		p.log.Error("analysis failed", zap.String("url", url), zap.Error(err))
		p.notifier.NotifyError(ctx, msg.Channel, msg.Timestamp, url, "llm", err.Error())
		return false
	}

	outcome, err := p.writer.Write(ctx, doc)
	if err != nil {
		p.log.Error("store write failed", zap.String("url", url), zap.Error(err))
		p.notifier.NotifyError(ctx, msg.Channel, msg.Timestamp, url, "notion", err.Error())
		return false
	}

	if outcome.IsDuplicate() {
		p.notifier.NotifyDuplicate(ctx, msg.Channel, msg.Timestamp, url, *outcome.Duplicate)
		return true
	}

	p.log.Info("pipeline complete",
		zap.String("url", url),
		zap.String("page_url", outcome.Created.URL))
	p.notifier.NotifySuccess(ctx, msg.Channel, msg.Timestamp, *outcome.Created, usage.CostUSD)
	return true
}
