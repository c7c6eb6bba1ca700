package domain

// ContentType classifies what kind of content a URL points at.
type ContentType string

const (
	TypeArticle    ContentType = "Article"
	TypeVideo      ContentType = "Video"
	TypeNewsletter ContentType = "Newsletter"
	TypePodcast    ContentType = "Podcast"
	TypeThread     ContentType = "Thread"
	TypeSocialPost ContentType = "Social Post"
	TypePDF        ContentType = "PDF"
)

// Valid reports whether the value belongs to the closed content-type set.
func (c ContentType) Valid() bool {
	switch c {
	case TypeArticle, TypeVideo, TypeNewsletter, TypePodcast, TypeThread, TypeSocialPost, TypePDF:
		return true
	}
	return false
}

// ExtractionStatus is the terminal outcome of a content extraction attempt.
// There is no in-progress value: content never leaves the extraction engine
// without exactly one of these set.
type ExtractionStatus string

const (
	StatusFull         ExtractionStatus = "full"
	StatusPartial      ExtractionStatus = "partial"
	StatusMetadataOnly ExtractionStatus = "metadata_only"
	StatusFailed       ExtractionStatus = "failed"
)

// Valid reports whether the value belongs to the closed status set.
func (s ExtractionStatus) Valid() bool {
	switch s {
	case StatusFull, StatusPartial, StatusMetadataOnly, StatusFailed:
		return true
	}
	return false
}

// MethodTranscriptFallback marks a video whose transcript retrieval hit an
// unexpected error: downstream analysis should hand the media to the model
// natively instead of treating the content as thin.
const MethodTranscriptFallback = "youtube-transcript-fallback"

// ExtractedContent holds everything recovered from a URL. A single struct
// with optional fields covers all content types; unset strings are empty
// and unset counts are zero.
type ExtractedContent struct {
	URL              string
	ContentType      ContentType
	Title            string
	Author           string
	SourceDomain     string
	Text             string // main body text (articles, PDFs)
	Transcript       string // spoken-word transcript (videos)
	Description      string // meta description or video description
	PublishedDate    string // source formats vary, kept verbatim
	WordCount        int
	DurationSeconds  int
	UserNote         string // attached by the orchestrator before analysis
	ExtractionMethod string
	ExtractionStatus ExtractionStatus
}

// ModelMediaFallback reports whether this is a video whose transcript
// retrieval failed unexpectedly, so the model should watch the media
// natively rather than score the content as thin.
func (c ExtractedContent) ModelMediaFallback() bool {
	return c.ContentType == TypeVideo && c.ExtractionMethod == MethodTranscriptFallback
}

// Body returns the best available body text in priority order:
// transcript, then main text, then description.
func (c ExtractedContent) Body() string {
	if c.Transcript != "" {
		return c.Transcript
	}
	if c.Text != "" {
		return c.Text
	}
	return c.Description
}
