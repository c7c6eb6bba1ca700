package notion

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub/internal/domain"
)

func sampleDocument() domain.KnowledgeDocument {
	return domain.KnowledgeDocument{
		Entry: domain.KnowledgeEntry{
			Title:       "Caching for Analysts",
			Category:    domain.CategoryData,
			ContentType: domain.TypeArticle,
			Source:      "https://example.com/post",
			Author:      "Jo Writer",
			DateAdded:   time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
			Status:      domain.StatusNew,
			Priority:    domain.PriorityHigh,
			Tags:        []string{"analytics", "performance"},
			Summary:     "A summary.",
		},
		SummarySection: "Exec summary.",
		KeyPoints:      []string{"p1", "p2"},
		KeyLearnings: []domain.KeyLearning{{
			Title:           "Use caching tiers",
			What:            "Layered caches cut latency.",
			WhyItMatters:    "Faster reporting.",
			HowToApply:      []string{"step one", "step two"},
			ResourcesNeeded: "BigQuery project",
			EstimatedTime:   "15 minutes",
		}},
		DetailedNotes: "## Section\nSome notes.",
	}
}

func TestBuildPropertiesMapsAllFields(t *testing.T) {
	t.Parallel()

	props := BuildProperties(sampleDocument())
	require.Len(t, props, 10)

	title := props["Title"].(notionapi.TitleProperty)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Caching for Analysts", title.Title[0].Text.Content)

	assert.Equal(t, "Data & Analytics", props["Category"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "Article", props["Content Type"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "https://example.com/post", props["Source"].(notionapi.URLProperty).URL)
	assert.Equal(t, "New", props["Status"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "High", props["Priority"].(notionapi.SelectProperty).Select.Name)

	tags := props["Tags"].(notionapi.MultiSelectProperty).MultiSelect
	require.Len(t, tags, 2)
	assert.Equal(t, "analytics", tags[0].Name)

	author := props["Author/Creator"].(notionapi.RichTextProperty).RichText
	require.Len(t, author, 1)
	assert.Equal(t, "Jo Writer", author[0].Text.Content)
}

func TestSplitRichTextChunksLongText(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", richTextLimit*2+10)
	chunks := splitRichText(long)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Text.Content, richTextLimit)
	assert.Len(t, chunks[1].Text.Content, richTextLimit)
	assert.Len(t, chunks[2].Text.Content, 10)
}

func TestSplitRichTextKeepsRunesIntact(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("€", richTextLimit+50)
	chunks := splitRichText(long)

	require.Len(t, chunks, 2)
	assert.Equal(t, richTextLimit, utf8.RuneCountInString(chunks[0].Text.Content))
	assert.Equal(t, 50, utf8.RuneCountInString(chunks[1].Text.Content))
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Text.Content), "chunk %d must stay valid UTF-8", i)
	}
	assert.Equal(t, long, chunks[0].Text.Content+chunks[1].Text.Content)
}

func TestSplitRichTextEmpty(t *testing.T) {
	t.Parallel()

	chunks := splitRichText("")
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text.Content)
}
