package ports

import (
	"context"
	"time"

	"knowledgehub/internal/cost"
	"knowledgehub/internal/domain"
)

// ContentExtractor turns a URL into extracted content within a wall-clock
// budget. It never returns an error: every failure mode is encoded as a
// terminal ExtractionStatus on the result.
type ContentExtractor interface {
	Extract(ctx context.Context, url string, budget time.Duration) domain.ExtractedContent
}

// Analyzer produces a structured knowledge document from extracted content
// via a language model, reporting the token usage of the call(s).
type Analyzer interface {
	Analyze(ctx context.Context, content domain.ExtractedContent) (domain.KnowledgeDocument, cost.TokenUsage, error)
}

// KnowledgeWriter persists a document into the knowledge store, skipping
// duplicates.
type KnowledgeWriter interface {
	Write(ctx context.Context, doc domain.KnowledgeDocument) (domain.WriteOutcome, error)
}

// Notifier reports per-URL outcomes back to the originating message.
// All methods are best-effort: implementations log their own failures and
// never block or abort the pipeline.
type Notifier interface {
	NotifySuccess(ctx context.Context, channel, timestamp string, page domain.PageRef, costUSD float64)
	NotifyDuplicate(ctx context.Context, channel, timestamp, url string, page domain.PageRef)
	NotifyError(ctx context.Context, channel, timestamp, url, stage, detail string)
	AddReaction(ctx context.Context, channel, timestamp, name string)
}

// Messenger posts standalone messages (digests, cost alerts) and, unlike
// Notifier, surfaces failures so callers can react to undelivered sends.
type Messenger interface {
	PostMessage(ctx context.Context, channel, text string) error
}

// MessageProcessor runs the full ingestion pipeline for one inbound
// message. Implementations isolate per-URL failures and report every
// outcome through the Notifier themselves.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg domain.InboundMessage)
}

// EntryBrowser reads back recently stored entries for digest reporting.
type EntryBrowser interface {
	RecentEntries(ctx context.Context, since time.Time) ([]domain.EntrySummary, error)
}
