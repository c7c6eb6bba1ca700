package extraction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
	"knowledgehub/internal/ports"
)

// Minimum remaining budget to attempt a retry.
const retryMinRemaining = 3 * time.Second

// Engine runs the dispatched extractor under an absolute wall-clock
// deadline with at most one retry on transient failures.
type Engine struct {
	registry *Registry
	logger   *zap.Logger
}

var _ ports.ContentExtractor = (*Engine)(nil)

// NewEngine wires the extractor registry.
func NewEngine(registry *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{registry: registry, logger: logger}
}

// Extract classifies the URL and runs the matching extractor within the
// budget. It never returns an error: a blown deadline yields
// Failed/"timeout", exhausted retries yield Failed/"retry-exhausted", and
// everything else is whatever terminal status the extractor encoded.
func (e *Engine) Extract(ctx context.Context, url string, budget time.Duration) domain.ExtractedContent {
	contentType := ClassifyURL(url)
	extractor := e.registry.Resolve(contentType)

	deadline := time.Now().Add(budget)
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	type outcome struct {
		content domain.ExtractedContent
		err     error
	}
	// Buffered so an abandoned attempt can still deliver and exit.
	results := make(chan outcome, 2)
	dispatch := func() {
		go func() {
			content, err := extractor.Extract(dctx, url)
			results <- outcome{content: content, err: err}
		}()
	}

	dispatch()
	retried := false
	for {
		select {
		case <-dctx.Done():
			e.logger.Warn("extraction timed out",
				zap.String("url", url),
				zap.Duration("budget", budget))
			return failedContent(url, contentType, "timeout")
		case res := <-results:
			if dctx.Err() != nil {
				// Deadline elapsed while the result was in flight; the
				// budget wins.
				e.logger.Warn("extraction timed out",
					zap.String("url", url),
					zap.Duration("budget", budget))
				return failedContent(url, contentType, "timeout")
			}
			if res.err == nil {
				return res.content
			}
			if !errs.Transient(res.err) {
				e.logger.Warn("extraction failed",
					zap.String("url", url),
					zap.Error(res.err))
				return failedContent(url, contentType, methodLabel(res.content))
			}
			remaining := time.Until(deadline)
			if retried || remaining < retryMinRemaining {
				e.logger.Warn("transient extraction error, retries exhausted",
					zap.String("url", url),
					zap.Duration("remaining", remaining),
					zap.Error(res.err))
				return failedContent(url, contentType, "retry-exhausted")
			}
			e.logger.Info("transient extraction error, retrying",
				zap.String("url", url),
				zap.Duration("remaining", remaining),
				zap.Error(res.err))
			retried = true
			dispatch()
		}
	}
}

func failedContent(url string, contentType domain.ContentType, method string) domain.ExtractedContent {
	return domain.ExtractedContent{
		URL:              url,
		ContentType:      contentType,
		ExtractionMethod: method,
		ExtractionStatus: domain.StatusFailed,
	}
}

// methodLabel keeps whatever method the failing extractor reported so the
// failure is attributable, falling back to a generic label.
func methodLabel(content domain.ExtractedContent) string {
	if content.ExtractionMethod != "" {
		return content.ExtractionMethod
	}
	return "extraction-error"
}
