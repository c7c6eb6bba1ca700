package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
	"knowledgehub/internal/ports"
)

// Store is what the writer needs from the Notion API, kept narrow so
// tests can script store behavior.
type Store interface {
	FindByURL(ctx context.Context, url string) (*domain.PageRef, error)
	TagVocabulary(ctx context.Context) (map[string]struct{}, error)
	CreatePage(ctx context.Context, props notionapi.Properties, children []notionapi.Block) (domain.PageRef, error)
	AppendBlocks(ctx context.Context, pageID string, children []notionapi.Block) error
	RecentEntries(ctx context.Context, since time.Time) ([]domain.EntrySummary, error)
}

// APIStore talks to the Notion API through the official-schema client.
type APIStore struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

var (
	_ Store              = (*APIStore)(nil)
	_ ports.EntryBrowser = (*APIStore)(nil)
)

// NewAPIStore creates a store bound to one database.
func NewAPIStore(apiKey, databaseID string) (*APIStore, error) {
	if apiKey == "" || databaseID == "" {
		return nil, fmt.Errorf("notion api key and database id are required")
	}
	return &APIStore{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: notionapi.DatabaseID(databaseID),
	}, nil
}

// FindByURL queries for an existing page whose Source property equals
// the given (already normalized) URL. Nil means no duplicate.
func (s *APIStore) FindByURL(ctx context.Context, url string) (*domain.PageRef, error) {
	resp, err := s.client.Database.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		// Notion accepts rich_text equality filters on URL properties.
		Filter: notionapi.PropertyFilter{
			Property: "Source",
			RichText: &notionapi.TextFilterCondition{Equals: url},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, classifyStoreError("notion.find_by_url", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	page := resp.Results[0]
	return &domain.PageRef{
		ID:    string(page.ID),
		URL:   page.URL,
		Title: pageTitle(page),
	}, nil
}

// TagVocabulary fetches the option names of the Tags multi-select from
// the database schema.
func (s *APIStore) TagVocabulary(ctx context.Context) (map[string]struct{}, error) {
	db, err := s.client.Database.Get(ctx, s.databaseID)
	if err != nil {
		return nil, classifyStoreError("notion.tag_vocabulary", err)
	}

	config, ok := db.Properties["Tags"].(*notionapi.MultiSelectPropertyConfig)
	if !ok {
		return nil, fmt.Errorf("notion.tag_vocabulary: Tags is not a multi-select property")
	}

	valid := make(map[string]struct{}, len(config.MultiSelect.Options))
	for _, opt := range config.MultiSelect.Options {
		valid[opt.Name] = struct{}{}
	}
	return valid, nil
}

// CreatePage creates the page with its first batch of body blocks.
func (s *APIStore) CreatePage(ctx context.Context, props notionapi.Properties, children []notionapi.Block) (domain.PageRef, error) {
	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: props,
		Children:   children,
	})
	if err != nil {
		return domain.PageRef{}, classifyStoreError("notion.create_page", err)
	}
	return domain.PageRef{ID: string(page.ID), URL: page.URL}, nil
}

// AppendBlocks appends one batch of body blocks to an existing page.
func (s *APIStore) AppendBlocks(ctx context.Context, pageID string, children []notionapi.Block) error {
	_, err := s.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	if err != nil {
		return classifyStoreError("notion.append_blocks", err)
	}
	return nil
}

// RecentEntries returns entries added on or after the given time, newest
// first, for digest reporting.
func (s *APIStore) RecentEntries(ctx context.Context, since time.Time) ([]domain.EntrySummary, error) {
	sinceDate := notionapi.Date(since)
	resp, err := s.client.Database.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Date Added",
			Date:     &notionapi.DateFilterCondition{OnOrAfter: &sinceDate},
		},
		Sorts: []notionapi.SortObject{{
			Property:  "Date Added",
			Direction: notionapi.SortOrderDESC,
		}},
		PageSize: 100,
	})
	if err != nil {
		return nil, classifyStoreError("notion.recent_entries", err)
	}

	entries := make([]domain.EntrySummary, 0, len(resp.Results))
	for _, page := range resp.Results {
		entries = append(entries, domain.EntrySummary{
			Title:    pageTitle(page),
			URL:      pageSource(page),
			Category: pageSelect(page, "Category"),
			Tags:     pageTags(page),
		})
	}
	return entries, nil
}

// classifyStoreError maps API failures onto the retry taxonomy. A
// message naming multi_select validation means the local tag vocabulary
// went stale between fetch and write.
func classifyStoreError(op string, err error) error {
	if strings.Contains(err.Error(), "multi_select") {
		return errs.E(errs.KindStaleTag, op, err)
	}
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return errs.E(errs.KindFromHTTPStatus(apiErr.Status), op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pageTitle(page notionapi.Page) string {
	prop, ok := page.Properties["Title"].(*notionapi.TitleProperty)
	if !ok || len(prop.Title) == 0 {
		return "Untitled"
	}
	return prop.Title[0].PlainText
}

func pageSource(page notionapi.Page) string {
	if prop, ok := page.Properties["Source"].(*notionapi.URLProperty); ok {
		return prop.URL
	}
	return ""
}

func pageSelect(page notionapi.Page, name string) string {
	if prop, ok := page.Properties[name].(*notionapi.SelectProperty); ok {
		return prop.Select.Name
	}
	return ""
}

func pageTags(page notionapi.Page) []string {
	prop, ok := page.Properties["Tags"].(*notionapi.MultiSelectProperty)
	if !ok {
		return nil
	}
	tags := make([]string, len(prop.MultiSelect))
	for i, opt := range prop.MultiSelect {
		tags[i] = opt.Name
	}
	return tags
}
