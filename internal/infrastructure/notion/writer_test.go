package notion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
)

type fakeStore struct {
	existing       *domain.PageRef
	vocab          map[string]struct{}
	vocabCalls     int
	createErrs     []error
	createCalls    []createCall
	appendBatches  [][]notionapi.Block
	findErr        error
	appendErr      error
	createdPageRef domain.PageRef
}

type createCall struct {
	props    notionapi.Properties
	children []notionapi.Block
}

func (f *fakeStore) FindByURL(_ context.Context, url string) (*domain.PageRef, error) {
	return f.existing, f.findErr
}

func (f *fakeStore) TagVocabulary(_ context.Context) (map[string]struct{}, error) {
	f.vocabCalls++
	return f.vocab, nil
}

func (f *fakeStore) CreatePage(_ context.Context, props notionapi.Properties, children []notionapi.Block) (domain.PageRef, error) {
	f.createCalls = append(f.createCalls, createCall{props: props, children: children})
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return domain.PageRef{}, err
		}
	}
	return f.createdPageRef, nil
}

func (f *fakeStore) AppendBlocks(_ context.Context, pageID string, children []notionapi.Block) error {
	f.appendBatches = append(f.appendBatches, children)
	return f.appendErr
}

func (f *fakeStore) RecentEntries(_ context.Context, _ time.Time) ([]domain.EntrySummary, error) {
	return nil, nil
}

func newTestWriter(store *fakeStore) (*Writer, *TagCache) {
	cache := NewTagCache()
	return NewWriter(store, cache, zap.NewNop()), cache
}

func TestWriterDuplicateShortCircuits(t *testing.T) {
	t.Parallel()

	existing := &domain.PageRef{ID: "page-1", URL: "https://notion.so/page-1", Title: "Old Entry"}
	store := &fakeStore{existing: existing}
	writer, _ := newTestWriter(store)

	outcome, err := writer.Write(context.Background(), sampleDocument())
	require.NoError(t, err)

	assert.True(t, outcome.IsDuplicate())
	assert.Equal(t, existing, outcome.Duplicate)
	assert.Empty(t, store.createCalls)
	assert.Zero(t, store.vocabCalls)
}

func TestWriterNormalizesSourceBeforeLookup(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		vocab:          setOf("analytics", "performance"),
		createdPageRef: domain.PageRef{ID: "page-2", URL: "https://notion.so/page-2"},
	}
	writer, _ := newTestWriter(store)

	doc := sampleDocument()
	doc.Entry.Source = "https://example.com/post/?utm_source=slack"

	outcome, err := writer.Write(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, outcome.Created)

	require.Len(t, store.createCalls, 1)
	source := store.createCalls[0].props["Source"].(notionapi.URLProperty).URL
	assert.Equal(t, "https://example.com/post", source)
}

func TestWriterFiltersUnknownTags(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		vocab:          setOf("analytics"),
		createdPageRef: domain.PageRef{ID: "page-3", URL: "https://notion.so/page-3"},
	}
	writer, _ := newTestWriter(store)

	outcome, err := writer.Write(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.NotNil(t, outcome.Created)
	assert.Equal(t, "Caching for Analysts", outcome.Created.Title)

	tags := store.createCalls[0].props["Tags"].(notionapi.MultiSelectProperty).MultiSelect
	require.Len(t, tags, 1)
	assert.Equal(t, "analytics", tags[0].Name)
}

func TestWriterStaleTagRetriesOnce(t *testing.T) {
	t.Parallel()

	staleErr := errs.E(errs.KindStaleTag, "notion.create_page",
		errors.New("Tags is expected to be multi_select"))
	store := &fakeStore{
		vocab:          setOf("analytics", "performance"),
		createErrs:     []error{staleErr, nil},
		createdPageRef: domain.PageRef{ID: "page-4", URL: "https://notion.so/page-4"},
	}
	writer, cache := newTestWriter(store)

	outcome, err := writer.Write(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.NotNil(t, outcome.Created)

	assert.Len(t, store.createCalls, 2)
	// Vocabulary fetched once up front and once after invalidation.
	assert.Equal(t, 2, store.vocabCalls)
	_, fresh := cache.Get()
	assert.True(t, fresh, "cache refilled after invalidation")
}

func TestWriterStaleTagSecondFailurePropagates(t *testing.T) {
	t.Parallel()

	staleErr := errs.E(errs.KindStaleTag, "notion.create_page",
		errors.New("Tags is expected to be multi_select"))
	store := &fakeStore{
		vocab:      setOf("analytics"),
		createErrs: []error{staleErr, staleErr},
	}
	writer, _ := newTestWriter(store)

	_, err := writer.Write(context.Background(), sampleDocument())
	require.Error(t, err)
	assert.Len(t, store.createCalls, 2)
}

func TestWriterBatchesOverflowBlocks(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		vocab:          setOf("analytics", "performance"),
		createdPageRef: domain.PageRef{ID: "page-5", URL: "https://notion.so/page-5"},
	}
	writer, _ := newTestWriter(store)

	doc := sampleDocument()
	doc.KeyPoints = nil
	for i := 0; i < 240; i++ {
		doc.KeyPoints = append(doc.KeyPoints, fmt.Sprintf("point %d", i))
	}

	_, err := writer.Write(context.Background(), doc)
	require.NoError(t, err)

	total := len(BuildBodyBlocks(doc))
	require.Greater(t, total, 2*blockBatchSize)

	assert.Len(t, store.createCalls[0].children, blockBatchSize)
	appended := 0
	for _, batch := range store.appendBatches {
		assert.LessOrEqual(t, len(batch), blockBatchSize)
		appended += len(batch)
	}
	assert.Equal(t, total-blockBatchSize, appended)
}

func TestWriterOtherCreateErrorPropagates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		vocab:      setOf("analytics"),
		createErrs: []error{errs.E(errs.KindServerSide, "notion.create_page", errors.New("502"))},
	}
	writer, _ := newTestWriter(store)

	_, err := writer.Write(context.Background(), sampleDocument())
	require.Error(t, err)
	assert.Len(t, store.createCalls, 1)
}
