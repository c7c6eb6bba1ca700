// Package notion persists knowledge documents into a Notion database:
// URL-keyed duplicate detection, tag vocabulary filtering with a TTL
// cache, and batched page body writes.
package notion

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// NormalizeURL canonicalizes a URL for duplicate comparison: utm_*
// tracking parameters are stripped, then the safe purell normalizations
// plus trailing-slash removal and query sorting are applied. Tracking
// params are stripped by hand because wholesale query removal would
// collapse distinct pages that differ only by a meaningful parameter.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := parsed.Query()
	for key := range query {
		if strings.HasPrefix(key, "utm_") {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()

	return purell.NormalizeURL(parsed,
		purell.FlagsSafe|purell.FlagRemoveTrailingSlash|purell.FlagSortQuery)
}
