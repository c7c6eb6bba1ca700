package extraction

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"knowledgehub/internal/domain"
)

const transcriptMethod = "youtube-transcript"

// Covers youtube.com/watch?v=, youtu.be/, shorts/, and embed/ URLs, with
// or without extra query parameters.
var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:watch\?.*v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

var (
	ogTitlePattern       = regexp.MustCompile(`<meta property="og:title" content="([^"]*)"`)
	ogDescriptionPattern = regexp.MustCompile(`<meta property="og:description" content="([^"]*)"`)
	lengthPattern        = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)
	unavailablePattern   = regexp.MustCompile(`"playabilityStatus":\{"status":"(?:ERROR|LOGIN_REQUIRED)"`)
)

// Author patterns tried in order. JSON keys first since they
// unambiguously name the channel; itemprop is last resort because its
// first match is often the video title.
var authorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"ownerChannelName":"([^"]*)"`),
	regexp.MustCompile(`"author":"([^"]*)"`),
	regexp.MustCompile(`"channelName":"([^"]*)"`),
	regexp.MustCompile(`<meta name="author" content="([^"]*)"`),
	regexp.MustCompile(`<link itemprop="name" content="([^"]*)"`),
}

// YouTubeExtractor pulls video metadata from the watch page and the
// transcript from the page's caption tracks.
type YouTubeExtractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewYouTubeExtractor wires an HTTP client; a nil client gets a default
// with a 15-second timeout.
func NewYouTubeExtractor(client *http.Client, logger *zap.Logger) *YouTubeExtractor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeExtractor{client: client, logger: logger}
}

// ExtractVideoID pulls the 11-character video id from a YouTube URL,
// empty string if absent.
func ExtractVideoID(url string) string {
	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

// Extract fetches the watch page once for metadata and caption tracks,
// then retrieves the transcript. Outcomes:
//   - Full with the joined transcript text on success
//   - MetadataOnly when captions are disabled or no English track exists
//   - Failed when the URL has no video id or the video is unavailable
//   - MetadataOnly with the fallback method on any other transcript error,
//     signalling that the model should process the media natively
func (y *YouTubeExtractor) Extract(ctx context.Context, rawURL string) (domain.ExtractedContent, error) {
	videoID := ExtractVideoID(rawURL)
	if videoID == "" {
		return domain.ExtractedContent{
			URL:              rawURL,
			ContentType:      domain.TypeVideo,
			SourceDomain:     "youtube.com",
			ExtractionMethod: transcriptMethod,
			ExtractionStatus: domain.StatusFailed,
		}, nil
	}

	page, err := y.fetchPage(ctx, rawURL)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("fetch watch page: %w", err)
	}

	content := domain.ExtractedContent{
		URL:              rawURL,
		ContentType:      domain.TypeVideo,
		Title:            firstMatch(ogTitlePattern, page),
		Author:           authorFromPage(page),
		Description:      firstMatch(ogDescriptionPattern, page),
		SourceDomain:     "youtube.com",
		ExtractionMethod: transcriptMethod,
	}
	if secs := firstMatch(lengthPattern, page); secs != "" {
		content.DurationSeconds, _ = strconv.Atoi(secs)
	}

	if unavailablePattern.MatchString(page) {
		content.ExtractionStatus = domain.StatusFailed
		return content, nil
	}

	trackURL, found := captionTrackURL(page, "en")
	if !found {
		// Captions disabled or no track for the target language.
		content.ExtractionStatus = domain.StatusMetadataOnly
		return content, nil
	}

	transcript, err := y.fetchTranscript(ctx, trackURL)
	if err != nil {
		y.logger.Warn("transcript retrieval failed, using model-native fallback",
			zap.String("url", rawURL),
			zap.Error(err))
		content.ExtractionMethod = domain.MethodTranscriptFallback
		content.ExtractionStatus = domain.StatusMetadataOnly
		return content, nil
	}

	content.Transcript = transcript
	content.WordCount = len(strings.Fields(transcript))
	content.ExtractionStatus = domain.StatusFull
	return content, nil
}

func (y *YouTubeExtractor) fetchPage(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "KnowledgeHub/1.0")
	req.Header.Set("Accept-Language", "en")

	resp, err := y.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// captionTrackURL finds the caption track for the wanted language inside
// the player response embedded in the watch page.
func captionTrackURL(page, language string) (string, bool) {
	match := captionTracksPattern.FindStringSubmatch(page)
	if match == nil {
		return "", false
	}

	var tracks []struct {
		BaseURL      string `json:"baseUrl"`
		LanguageCode string `json:"languageCode"`
	}
	if err := json.Unmarshal([]byte(match[1]), &tracks); err != nil {
		return "", false
	}

	for _, track := range tracks {
		if track.LanguageCode == language || strings.HasPrefix(track.LanguageCode, language+"-") {
			return track.BaseURL, true
		}
	}
	return "", false
}

func (y *YouTubeExtractor) fetchTranscript(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption track returned %s", resp.Status)
	}

	var doc struct {
		Texts []struct {
			Value string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode caption track: %w", err)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		if v := strings.TrimSpace(html.UnescapeString(t.Value)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("caption track is empty")
	}
	return strings.Join(parts, " "), nil
}

func firstMatch(pattern *regexp.Regexp, page string) string {
	match := pattern.FindStringSubmatch(page)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func authorFromPage(page string) string {
	for _, pattern := range authorPatterns {
		if author := firstMatch(pattern, page); author != "" {
			return author
		}
	}
	return ""
}
