// Package slack receives inbound messages and reports pipeline outcomes
// back to the originating channel.
package slack

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Matches the mrkdwn link forms <https://example.com> and
// <https://example.com|label>. User refs <@U123>, channel refs <#C123>
// and special mentions <!here> do not match.
var urlPattern = regexp.MustCompile(`<(https?://[^|>]+)(?:\|[^>]*)?>`)

const (
	resolveTimeout  = 10 * time.Second
	maxRedirectHops = 5
)

// ExtractURLs returns every linked URL in a mrkdwn message, in order.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllStringSubmatch(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}
	return urls
}

// ExtractUserNote returns the message text with all link markup removed,
// trimmed. Empty means the message carried nothing but links.
func ExtractUserNote(text string) string {
	return strings.TrimSpace(urlPattern.ReplaceAllString(text, ""))
}

// Resolver follows shortener and tracking redirects to final URLs.
type Resolver struct {
	client *http.Client
	log    *zap.Logger
}

// NewResolver creates a resolver with a bounded redirect chain. GET is
// used rather than HEAD because some shorteners reject HEAD.
func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: resolveTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirectHops {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		log: log,
	}
}

// ResolveAll resolves every URL concurrently, dropping failures and
// preserving input order among the survivors.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) []string {
	resolved := make([]string, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			final, err := r.resolve(ctx, u)
			if err != nil {
				r.log.Warn("failed to resolve url", zap.String("url", u), zap.Error(err))
				return nil
			}
			resolved[i] = final
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]string, 0, len(urls))
	for _, u := range resolved {
		if u != "" {
			kept = append(kept, u)
		}
	}
	return kept
}

func (r *Resolver) resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), nil
}
