package extraction

import (
	"net/url"
	"strings"
)

// PaywallMatcher checks URLs against a configured list of paywalled
// domains, matching exact hosts and parent-domain suffixes so that
// www.nytimes.com matches nytimes.com.
type PaywallMatcher struct {
	domains map[string]struct{}
}

// NewPaywallMatcher builds a matcher from the configured domain list.
func NewPaywallMatcher(domains []string) *PaywallMatcher {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return &PaywallMatcher{domains: set}
}

// IsPaywalled reports whether the URL's host belongs to a known
// paywalled domain. Subdomains are stripped one label at a time.
func (m *PaywallMatcher) IsPaywalled(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return false
	}

	host := parsed.Hostname()
	for host != "" {
		if _, ok := m.domains[host]; ok {
			return true
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			break
		}
		host = host[dot+1:]
	}
	return false
}
