package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
	"knowledgehub/internal/ports"
)

// blockBatchSize is the API limit on children per create/append call.
const blockBatchSize = 100

// Writer persists knowledge documents, skipping URLs already stored.
type Writer struct {
	store Store
	tags  *TagCache
	log   *zap.Logger
}

var _ ports.KnowledgeWriter = (*Writer)(nil)

// NewWriter creates a writer over the given store.
func NewWriter(store Store, tags *TagCache, log *zap.Logger) *Writer {
	return &Writer{store: store, tags: tags, log: log}
}

// Write normalizes the source URL, checks for a duplicate, filters tags
// against the cached vocabulary, and creates the page with its body in
// batches. A stale-tag rejection invalidates the cache and retries the
// create exactly once with a fresh vocabulary.
func (w *Writer) Write(ctx context.Context, doc domain.KnowledgeDocument) (domain.WriteOutcome, error) {
	doc.Entry.Source = NormalizeURL(doc.Entry.Source)

	existing, err := w.store.FindByURL(ctx, doc.Entry.Source)
	if err != nil {
		return domain.WriteOutcome{}, err
	}
	if existing != nil {
		w.log.Warn("duplicate url skipped",
			zap.String("url", doc.Entry.Source),
			zap.String("page_id", existing.ID))
		return domain.WriteOutcome{Duplicate: existing}, nil
	}

	valid, err := w.validTags(ctx)
	if err != nil {
		return domain.WriteOutcome{}, err
	}
	doc.Entry.Tags = FilterTags(doc.Entry.Tags, valid)

	props := BuildProperties(doc)
	blocks := BuildBodyBlocks(doc)

	first := blocks
	var overflow []notionapi.Block
	if len(blocks) > blockBatchSize {
		first, overflow = blocks[:blockBatchSize], blocks[blockBatchSize:]
	}

	page, err := w.store.CreatePage(ctx, props, first)
	if errs.KindOf(err) == errs.KindStaleTag {
		w.log.Warn("stale tag vocabulary, retrying with fresh tags",
			zap.String("url", doc.Entry.Source))
		w.tags.Clear()
		valid, err = w.validTags(ctx)
		if err != nil {
			return domain.WriteOutcome{}, err
		}
		doc.Entry.Tags = FilterTags(doc.Entry.Tags, valid)
		page, err = w.store.CreatePage(ctx, BuildProperties(doc), first)
	}
	if err != nil {
		return domain.WriteOutcome{}, err
	}

	for start := 0; start < len(overflow); start += blockBatchSize {
		end := start + blockBatchSize
		if end > len(overflow) {
			end = len(overflow)
		}
		if err := w.store.AppendBlocks(ctx, page.ID, overflow[start:end]); err != nil {
			return domain.WriteOutcome{}, err
		}
	}

	page.Title = doc.Entry.Title
	w.log.Info("created knowledge page",
		zap.String("title", page.Title),
		zap.String("page_id", page.ID))
	return domain.WriteOutcome{Created: &page}, nil
}

// validTags returns the tag vocabulary, serving from cache while fresh.
func (w *Writer) validTags(ctx context.Context) (map[string]struct{}, error) {
	if cached, ok := w.tags.Get(); ok {
		return cached, nil
	}
	fetched, err := w.store.TagVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	w.tags.Set(fetched)
	return fetched, nil
}
