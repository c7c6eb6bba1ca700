package errs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	assert.Equal(t, KindServerSide, KindOf(E(KindServerSide, "op", base)))
	assert.Equal(t, KindServerSide, KindOf(fmt.Errorf("wrapped: %w", E(KindServerSide, "op", base))))
	assert.Equal(t, KindUnknown, KindOf(base))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestTransient(t *testing.T) {
	t.Parallel()

	assert.False(t, Transient(nil))
	assert.True(t, Transient(E(KindTransient, "fetch", errors.New("reset"))))
	assert.False(t, Transient(E(KindPermanent, "fetch", errors.New("404"))))
	assert.False(t, Transient(E(KindRateLimited, "fetch", errors.New("429"))))
	assert.False(t, Transient(context.DeadlineExceeded), "budget exhaustion is not retried")
	assert.True(t, Transient(&url.Error{Op: "Get", URL: "https://x", Err: errors.New("refused")}))
	assert.False(t, Transient(errors.New("plain")))
}

func TestRetryableModel(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	assert.True(t, RetryableModel(E(KindServerSide, "generate", base)))
	assert.True(t, RetryableModel(E(KindRateLimited, "generate", base)))
	assert.False(t, RetryableModel(E(KindPermanent, "generate", base)))
	assert.False(t, RetryableModel(E(KindSchema, "generate", base)))
	assert.False(t, RetryableModel(base))
}

func TestKindFromHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindRateLimited, KindFromHTTPStatus(429))
	assert.Equal(t, KindServerSide, KindFromHTTPStatus(500))
	assert.Equal(t, KindServerSide, KindFromHTTPStatus(503))
	assert.Equal(t, KindPermanent, KindFromHTTPStatus(400))
	assert.Equal(t, KindPermanent, KindFromHTTPStatus(404))
	assert.Equal(t, KindUnknown, KindFromHTTPStatus(200))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := E(KindStaleTag, "notion.create_page", errors.New("Tags is expected to be multi_select"))
	assert.Equal(t, "notion.create_page: Tags is expected to be multi_select", err.Error())

	bare := &Error{Kind: KindSchema, Op: "llm.parse"}
	assert.Equal(t, "llm.parse: schema", bare.Error())
}
