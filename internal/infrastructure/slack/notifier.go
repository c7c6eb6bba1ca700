package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/ports"
)

// Notifier posts outcome replies and reactions through the Slack Web
// API. Threaded notifications are best-effort: failures are logged and
// swallowed so they can never abort a pipeline run.
type Notifier struct {
	api *slack.Client
	log *zap.Logger
}

var (
	_ ports.Notifier  = (*Notifier)(nil)
	_ ports.Messenger = (*Notifier)(nil)
)

// NewNotifier creates a notifier for the given bot token.
func NewNotifier(token string, log *zap.Logger) *Notifier {
	return &Notifier{api: slack.New(token), log: log}
}

// NotifySuccess posts a thread reply linking the created page with the
// model cost of the run.
func (n *Notifier) NotifySuccess(ctx context.Context, channel, timestamp string, page domain.PageRef, costUSD float64) {
	text := fmt.Sprintf("Saved to Notion: <%s|%s> ($%.4f)", page.URL, page.Title, costUSD)
	n.reply(ctx, channel, timestamp, text)
}

// NotifyDuplicate posts a thread reply linking the already-stored page.
func (n *Notifier) NotifyDuplicate(ctx context.Context, channel, timestamp, url string, page domain.PageRef) {
	text := fmt.Sprintf("Already saved: <%s|%s>", page.URL, page.Title)
	n.reply(ctx, channel, timestamp, text)
}

// NotifyError posts a thread reply naming the failed stage.
func (n *Notifier) NotifyError(ctx context.Context, channel, timestamp, url, stage, detail string) {
	text := fmt.Sprintf("Failed to process <%s>: %s — %s", url, stage, detail)
	n.reply(ctx, channel, timestamp, text)
}

// AddReaction adds an emoji reaction to the original message. Benign
// rejections (already reacted, missing scope, deleted message) are
// logged at warn, everything else at error; nothing propagates.
func (n *Notifier) AddReaction(ctx context.Context, channel, timestamp, name string) {
	err := n.api.AddReactionContext(ctx, name, slack.ItemRef{Channel: channel, Timestamp: timestamp})
	if err == nil {
		return
	}
	switch err.Error() {
	case "already_reacted", "missing_scope", "no_item_specified", "message_not_found":
		n.log.Warn("reaction not added",
			zap.String("name", name),
			zap.String("timestamp", timestamp),
			zap.Error(err))
	default:
		n.log.Error("failed to add reaction",
			zap.String("name", name),
			zap.String("timestamp", timestamp),
			zap.Error(err))
	}
}

// PostMessage posts a standalone channel message, surfacing failures.
func (n *Notifier) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

func (n *Notifier) reply(ctx context.Context, channel, timestamp, text string) {
	_, _, err := n.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(timestamp))
	if err != nil {
		n.log.Warn("failed to send notification",
			zap.String("channel", channel),
			zap.String("timestamp", timestamp),
			zap.Error(err))
	}
}
