package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"knowledgehub/internal/domain"
)

func longContent(contentType domain.ContentType) domain.ExtractedContent {
	return domain.ExtractedContent{
		URL:         "https://example.com/post",
		ContentType: contentType,
		Title:       "A Post",
		Text:        strings.Repeat("word ", 800),
		WordCount:   800,
	}
}

func TestBuildSystemPromptAddendumSelection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content domain.ExtractedContent
		marker  string
	}{
		{"video", longContent(domain.TypeVideo), "Video/Podcast-Specific Instructions"},
		{"podcast", longContent(domain.TypePodcast), "Video/Podcast-Specific Instructions"},
		{"article", longContent(domain.TypeArticle), "Article/Blog-Specific Instructions"},
		{"thread", longContent(domain.TypeThread), "Thread-Specific Instructions"},
		{"newsletter", longContent(domain.TypeNewsletter), "Newsletter-Specific Instructions"},
	}

	markers := []string{
		"Video/Podcast-Specific Instructions",
		"Article/Blog-Specific Instructions",
		"Thread-Specific Instructions",
		"Newsletter-Specific Instructions",
		"Short Content Instructions",
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			prompt := BuildSystemPrompt(tc.content)
			for _, marker := range markers {
				if marker == tc.marker {
					assert.Contains(t, prompt, marker)
				} else {
					assert.NotContains(t, prompt, marker)
				}
			}
		})
	}
}

func TestBuildSystemPromptShortContentWins(t *testing.T) {
	t.Parallel()

	content := longContent(domain.TypeVideo)
	content.WordCount = 120

	prompt := BuildSystemPrompt(content)
	assert.Contains(t, prompt, "Short Content Instructions")
	assert.NotContains(t, prompt, "Video/Podcast-Specific Instructions")
}

func TestBuildSystemPromptIncludesSeededTags(t *testing.T) {
	t.Parallel()

	prompt := BuildSystemPrompt(longContent(domain.TypeArticle))
	assert.NotContains(t, prompt, "{seeded_tags}")
	assert.Contains(t, prompt, "prompt-engineering")
	assert.Contains(t, prompt, "growth-loops")
}

func TestBuildUserContentMetadataAndBody(t *testing.T) {
	t.Parallel()

	content := domain.ExtractedContent{
		ContentType:  domain.TypeArticle,
		Title:        "A Post",
		Author:       "Jo Writer",
		SourceDomain: "example.com",
		UserNote:     "for the launch plan",
		Text:         "Body text here.",
	}

	text, mediaURI := BuildUserContent(content)
	assert.Empty(t, mediaURI)
	assert.Contains(t, text, "Title: A Post")
	assert.Contains(t, text, "Author: Jo Writer")
	assert.Contains(t, text, "Source: example.com")
	assert.Contains(t, text, "User Note: for the launch plan")
	assert.Contains(t, text, "Body text here.")
}

func TestBuildUserContentOmitsAbsentMetadata(t *testing.T) {
	t.Parallel()

	content := domain.ExtractedContent{
		ContentType: domain.TypeArticle,
		Text:        "Just the body.",
	}

	text, _ := BuildUserContent(content)
	assert.NotContains(t, text, "Title:")
	assert.NotContains(t, text, "Author:")
	assert.NotContains(t, text, "User Note:")
	assert.Contains(t, text, "Just the body.")
}

func TestBuildUserContentBodyPriority(t *testing.T) {
	t.Parallel()

	content := domain.ExtractedContent{
		ContentType: domain.TypeVideo,
		Transcript:  "transcript wins",
		Text:        "text loses",
		Description: "description loses",
	}

	text, mediaURI := BuildUserContent(content)
	assert.Empty(t, mediaURI)
	assert.Contains(t, text, "transcript wins")
	assert.NotContains(t, text, "text loses")
}

func TestBuildUserContentVideoWithoutTranscriptUsesMedia(t *testing.T) {
	t.Parallel()

	content := domain.ExtractedContent{
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ContentType: domain.TypeVideo,
		Title:       "Talk",
		Description: "About caching.",
	}

	text, mediaURI := BuildUserContent(content)
	assert.Equal(t, content.URL, mediaURI)
	assert.Contains(t, text, "Description: About caching.")
	assert.Contains(t, text, "Please analyze this video.")
}
