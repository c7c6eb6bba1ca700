package extraction

import (
	"regexp"

	"knowledgehub/internal/domain"
)

// Patterns ordered by specificity; the first match wins.
var (
	videoPattern      = regexp.MustCompile(`(?:youtube\.com/(?:watch\?.*v=|shorts/|embed/)|youtu\.be/)`)
	pdfPattern        = regexp.MustCompile(`(?i)\.pdf(?:\?.*)?$`)
	newsletterPattern = regexp.MustCompile(`\.substack\.com/`)
	mediumPattern     = regexp.MustCompile(`(?:^https?://medium\.com/|\.medium\.com/)`)
)

// ClassifyURL detects the content type from URL patterns alone. It is a
// total function: unknown URLs default to Article.
func ClassifyURL(url string) domain.ContentType {
	if videoPattern.MatchString(url) {
		return domain.TypeVideo
	}
	if pdfPattern.MatchString(url) {
		return domain.TypePDF
	}
	if newsletterPattern.MatchString(url) {
		return domain.TypeNewsletter
	}
	if mediumPattern.MatchString(url) {
		// Medium posts go through the article extractor like any blog.
		return domain.TypeArticle
	}
	return domain.TypeArticle
}
