package slack

import (
	"context"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/ports"
)

// maxURLsPerMessage caps how many links one message may fan out to.
const maxURLsPerMessage = 10

// EventHandler filters callback events down to processable messages and
// dispatches them to the pipeline off the request goroutine.
type EventHandler struct {
	allowedUser string
	resolver    *Resolver
	processor   ports.MessageProcessor
	log         *zap.Logger

	// dispatch runs the async part; swapped for a synchronous call in tests.
	dispatch func(func())
}

// NewEventHandler creates a handler accepting messages only from the
// given user.
func NewEventHandler(allowedUser string, resolver *Resolver, processor ports.MessageProcessor, log *zap.Logger) *EventHandler {
	return &EventHandler{
		allowedUser: allowedUser,
		resolver:    resolver,
		processor:   processor,
		log:         log,
		dispatch:    func(fn func()) { go fn() },
	}
}

// OnMessage applies the message filters in order and, when a message
// survives, hands its URLs to the pipeline asynchronously. Rejections
// are cheap and common, so the cheapest checks run first: subtype
// (edits, joins, bot_message), explicit bot ID, wrong user, thread
// reply, and finally no links.
func (h *EventHandler) OnMessage(ev *slackevents.MessageEvent) {
	if ev.SubType != "" {
		return
	}
	if ev.BotID != "" {
		return
	}
	if ev.User != h.allowedUser {
		return
	}
	if ev.ThreadTimeStamp != "" {
		return
	}

	urls := ExtractURLs(ev.Text)
	if len(urls) == 0 {
		return
	}
	if len(urls) > maxURLsPerMessage {
		urls = urls[:maxURLsPerMessage]
	}
	note := ExtractUserNote(ev.Text)

	h.log.Info("dispatching message urls",
		zap.Int("count", len(urls)),
		zap.String("user", ev.User),
		zap.String("channel", ev.Channel))

	msg := domain.InboundMessage{
		Channel:   ev.Channel,
		Timestamp: ev.TimeStamp,
		UserID:    ev.User,
		URLs:      urls,
		UserNote:  note,
	}
	h.dispatch(func() {
		ctx := context.Background()
		msg.URLs = h.resolver.ResolveAll(ctx, msg.URLs)
		h.processor.ProcessMessage(ctx, msg)
	})
}
