package extraction

import (
	"context"

	"knowledgehub/internal/domain"
)

// Extractor is a single per-type extraction strategy. Implementations
// return an error only for transient (network/connection-class) failures;
// content-specific permanent conditions are encoded as a terminal
// ExtractionStatus on the returned content.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.ExtractedContent, error)
}

// Registry keeps a mapping from content types to their extractors.
type Registry struct {
	extractors map[domain.ContentType]Extractor
	fallback   Extractor
}

// NewRegistry builds a registry with the given article-style fallback.
func NewRegistry(fallback Extractor) *Registry {
	return &Registry{
		extractors: map[domain.ContentType]Extractor{},
		fallback:   fallback,
	}
}

// Register adds or replaces the extractor for a content type.
func (r *Registry) Register(contentType domain.ContentType, extractor Extractor) {
	if r.extractors == nil {
		r.extractors = map[domain.ContentType]Extractor{}
	}
	r.extractors[contentType] = extractor
}

// Resolve returns the extractor for a content type. Types without a
// dedicated extractor (newsletters, threads, social posts) resolve to the
// article fallback.
func (r *Registry) Resolve(contentType domain.ContentType) Extractor {
	if extractor, ok := r.extractors[contentType]; ok {
		return extractor
	}
	return r.fallback
}
