package extraction

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"knowledgehub/internal/domain"
)

const articleMethod = "goquery"

// Word count below which a paywalled page is considered truncated.
const paywallWordThreshold = 200

// Selectors tried in order when locating the main body of a page.
var bodySelectors = []string{
	"article",
	"main",
	"[role=main]",
	".post-content",
	".article-body",
	".entry-content",
	"#content",
}

// ArticleExtractor downloads a page and recovers body text plus metadata.
// It also serves newsletters, threads, and anything else without a
// dedicated extractor.
type ArticleExtractor struct {
	client  *http.Client
	paywall *PaywallMatcher
}

// NewArticleExtractor wires an HTTP client; a nil client gets a default
// with a 20-second timeout.
func NewArticleExtractor(client *http.Client, paywall *PaywallMatcher) *ArticleExtractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if paywall == nil {
		paywall = NewPaywallMatcher(nil)
	}
	return &ArticleExtractor{client: client, paywall: paywall}
}

// Extract downloads and parses the page. Download transport errors are
// returned for the engine's retry decision; everything else is encoded as
// a terminal status: Failed when the server refuses the page, MetadataOnly
// when no body text is recovered, Full otherwise, downgraded to Partial
// for short text on a known paywalled domain.
func (a *ArticleExtractor) Extract(ctx context.Context, rawURL string) (domain.ExtractedContent, error) {
	contentType := ClassifyURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.ExtractedContent{
			URL:              rawURL,
			ContentType:      contentType,
			ExtractionMethod: articleMethod,
			ExtractionStatus: domain.StatusFailed,
		}, nil
	}
	req.Header.Set("User-Agent", "KnowledgeHub/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("download page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ExtractedContent{
			URL:              rawURL,
			ContentType:      contentType,
			SourceDomain:     hostOf(rawURL),
			ExtractionMethod: articleMethod,
			ExtractionStatus: domain.StatusFailed,
		}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ExtractedContent{
			URL:              rawURL,
			ContentType:      contentType,
			SourceDomain:     hostOf(rawURL),
			ExtractionMethod: articleMethod,
			ExtractionStatus: domain.StatusFailed,
		}, nil
	}

	content := domain.ExtractedContent{
		URL:              rawURL,
		ContentType:      contentType,
		Title:            pageTitle(doc),
		Author:           pageAuthor(doc),
		SourceDomain:     siteName(doc, rawURL),
		Description:      metaContent(doc, `meta[property="og:description"]`, `meta[name="description"]`),
		PublishedDate:    metaContent(doc, `meta[property="article:published_time"]`, `meta[name="date"]`),
		ExtractionMethod: articleMethod,
	}

	text := bodyText(doc)
	if text == "" {
		content.ExtractionStatus = domain.StatusMetadataOnly
		return content, nil
	}

	content.Text = text
	content.WordCount = len(strings.Fields(text))
	content.ExtractionStatus = domain.StatusFull
	if a.paywall.IsPaywalled(rawURL) && content.WordCount < paywallWordThreshold {
		content.ExtractionStatus = domain.StatusPartial
	}
	return content, nil
}

func bodyText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()

	for _, selector := range bodySelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := collapseText(sel); text != "" {
				return text
			}
		}
	}

	// Fallback: gather top-level paragraphs.
	var parts []string
	doc.Find("body p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

func collapseText(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p, li, h2, h3, blockquote").Each(func(_ int, node *goquery.Selection) {
		if t := strings.TrimSpace(node.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(sel.Text())
	}
	return strings.Join(parts, "\n\n")
}

func pageTitle(doc *goquery.Document) string {
	if t := metaContent(doc, `meta[property="og:title"]`); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func pageAuthor(doc *goquery.Document) string {
	return metaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`)
}

func siteName(doc *goquery.Document, rawURL string) string {
	if name := metaContent(doc, `meta[property="og:site_name"]`); name != "" {
		return name
	}
	return hostOf(rawURL)
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if v, ok := doc.Find(selector).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
