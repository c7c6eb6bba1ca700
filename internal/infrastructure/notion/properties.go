package notion

import (
	"github.com/jomei/notionapi"

	"knowledgehub/internal/domain"
)

// richTextLimit is the per-object character cap the API enforces; every
// text field is chunked through splitRichText to stay under it.
const richTextLimit = 2000

func splitRichText(text string) []notionapi.RichText {
	if text == "" {
		return []notionapi.RichText{{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: ""},
		}}
	}
	// The API limit counts characters, so chunk on rune boundaries.
	runes := []rune(text)
	var chunks []notionapi.RichText
	for start := 0; start < len(runes); start += richTextLimit {
		end := start + richTextLimit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: string(runes[start:end])},
		})
	}
	return chunks
}

func boldRichText(text string) []notionapi.RichText {
	chunks := splitRichText(text)
	for i := range chunks {
		chunks[i].Annotations = &notionapi.Annotations{Bold: true}
	}
	return chunks
}

// BuildProperties maps every entry field onto the database property
// schema. Pure: the caller normalizes Source before building.
func BuildProperties(doc domain.KnowledgeDocument) notionapi.Properties {
	entry := doc.Entry
	added := notionapi.Date(entry.DateAdded)

	tags := make([]notionapi.Option, len(entry.Tags))
	for i, tag := range entry.Tags {
		tags[i] = notionapi.Option{Name: tag}
	}

	return notionapi.Properties{
		"Title":          notionapi.TitleProperty{Title: splitRichText(entry.Title)},
		"Category":       notionapi.SelectProperty{Select: notionapi.Option{Name: string(entry.Category)}},
		"Content Type":   notionapi.SelectProperty{Select: notionapi.Option{Name: string(entry.ContentType)}},
		"Source":         notionapi.URLProperty{URL: entry.Source},
		"Author/Creator": notionapi.RichTextProperty{RichText: splitRichText(entry.Author)},
		"Date Added":     notionapi.DateProperty{Date: &notionapi.DateObject{Start: &added}},
		"Status":         notionapi.SelectProperty{Select: notionapi.Option{Name: string(entry.Status)}},
		"Priority":       notionapi.SelectProperty{Select: notionapi.Option{Name: string(entry.Priority)}},
		"Tags":           notionapi.MultiSelectProperty{MultiSelect: tags},
		"Summary":        notionapi.RichTextProperty{RichText: splitRichText(entry.Summary)},
	}
}
