package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"knowledgehub/internal/domain"
)

const pdfMethod = "pdf"

// MaxPDFSizeBytes caps how large a PDF the extractor will download.
const MaxPDFSizeBytes = 20 * 1024 * 1024

// PDFExtractor downloads a PDF and extracts its text and metadata.
type PDFExtractor struct {
	client *http.Client
}

// NewPDFExtractor wires an HTTP client; a nil client gets a default with
// a 25-second timeout.
func NewPDFExtractor(client *http.Client) *PDFExtractor {
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &PDFExtractor{client: client}
}

// Extract probes the declared size first and skips the body entirely when
// it exceeds the cap, re-checks the actual size after download, then
// parses pages. Transport errors are returned for the engine's retry
// decision; oversized or unparseable-but-downloaded documents become
// MetadataOnly, parse failures become Failed.
func (p *PDFExtractor) Extract(ctx context.Context, rawURL string) (domain.ExtractedContent, error) {
	sourceDomain := hostOf(rawURL)

	// Header probe: skip the download when the declared size is over cap.
	// A failed probe or missing Content-Length is not conclusive.
	if declared, ok := p.declaredSize(ctx, rawURL); ok && declared > MaxPDFSizeBytes {
		return oversized(rawURL, sourceDomain, declared), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failedPDF(rawURL, sourceDomain), nil
	}
	req.Header.Set("User-Agent", "KnowledgeHub/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("download pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedPDF(rawURL, sourceDomain), nil
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDFSizeBytes+1))
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("read pdf body: %w", err)
	}
	if len(payload) > MaxPDFSizeBytes {
		return oversized(rawURL, sourceDomain, int64(len(payload))), nil
	}

	text, title, author, parseErr := parsePDF(payload)
	if parseErr != nil {
		return failedPDF(rawURL, sourceDomain), nil
	}

	content := domain.ExtractedContent{
		URL:              rawURL,
		ContentType:      domain.TypePDF,
		Title:            title,
		Author:           author,
		SourceDomain:     sourceDomain,
		ExtractionMethod: pdfMethod,
	}
	if text == "" {
		// Scanned or image-only PDF.
		content.ExtractionStatus = domain.StatusMetadataOnly
		return content, nil
	}

	content.Text = text
	content.WordCount = len(strings.Fields(text))
	content.ExtractionStatus = domain.StatusFull
	return content, nil
}

// declaredSize issues a HEAD request and parses Content-Length.
func (p *PDFExtractor) declaredSize(ctx context.Context, rawURL string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size, true
}

// parsePDF recovers text and Info-dictionary metadata. The pdf library
// panics on some malformed documents, so the whole parse is fenced.
func parsePDF(payload []byte) (text, title, author string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", "", "", fmt.Errorf("open pdf: %w", err)
	}

	info := reader.Trailer().Key("Info")
	title = strings.TrimSpace(info.Key("Title").Text())
	author = strings.TrimSpace(info.Key("Author").Text())

	plain, err := reader.GetPlainText()
	if err != nil {
		// Metadata survived even though page text did not.
		return "", title, author, nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", title, author, nil
	}
	return strings.TrimSpace(buf.String()), title, author, nil
}

func oversized(rawURL, sourceDomain string, size int64) domain.ExtractedContent {
	return domain.ExtractedContent{
		URL:              rawURL,
		ContentType:      domain.TypePDF,
		SourceDomain:     sourceDomain,
		Description:      fmt.Sprintf("PDF too large: %d bytes (limit: %d)", size, MaxPDFSizeBytes),
		ExtractionMethod: pdfMethod,
		ExtractionStatus: domain.StatusMetadataOnly,
	}
}

func failedPDF(rawURL, sourceDomain string) domain.ExtractedContent {
	return domain.ExtractedContent{
		URL:              rawURL,
		ContentType:      domain.TypePDF,
		SourceDomain:     sourceDomain,
		ExtractionMethod: pdfMethod,
		ExtractionStatus: domain.StatusFailed,
	}
}
