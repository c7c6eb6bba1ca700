package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips utm params",
			"https://example.com/a?utm_source=x&utm_medium=social&id=5",
			"https://example.com/a?id=5",
		},
		{
			"keeps meaningful params",
			"https://example.com/a?id=5&page=2",
			"https://example.com/a?id=5&page=2",
		},
		{
			"sorts query keys",
			"https://example.com/a?z=1&a=2",
			"https://example.com/a?a=2&z=1",
		},
		{
			"removes trailing slash",
			"https://example.com/posts/",
			"https://example.com/posts",
		},
		{
			"lowercases host",
			"https://EXAMPLE.com/Path",
			"https://example.com/Path",
		},
		{
			"removes default port",
			"https://example.com:443/a",
			"https://example.com/a",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeURL(tc.in))
		})
	}
}

func TestNormalizeURLTrackingVariantsCollide(t *testing.T) {
	t.Parallel()

	a := NormalizeURL("https://x.com/a?utm_source=y&id=5")
	b := NormalizeURL("https://x.com/a?id=5")
	assert.Equal(t, a, b)
}
