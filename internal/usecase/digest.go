package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"knowledgehub/internal/cost"
	"knowledgehub/internal/domain"
	"knowledgehub/internal/ports"
)

const digestWindow = 7 * 24 * time.Hour

// DigestDeps wires the reporting collaborators.
type DigestDeps struct {
	Browser   ports.EntryBrowser
	Messenger ports.Messenger
	Tracker   *cost.Tracker
	Channel   string // the owner's DM channel
	CostLimit float64
	Logger    *zap.Logger
}

// Digest builds the weekly summary message and runs the daily spend
// check against the configured threshold.
type Digest struct {
	browser   ports.EntryBrowser
	messenger ports.Messenger
	tracker   *cost.Tracker
	channel   string
	costLimit float64
	log       *zap.Logger

	now func() time.Time
}

// NewDigest constructs the reporting component.
func NewDigest(deps DigestDeps) *Digest {
	return &Digest{
		browser:   deps.Browser,
		messenger: deps.Messenger,
		tracker:   deps.Tracker,
		channel:   deps.Channel,
		costLimit: deps.CostLimit,
		log:       deps.Logger,
		now:       time.Now,
	}
}

// SendWeekly queries the last seven days of entries, posts the digest,
// and resets the weekly spend accumulator only after a successful send
// so an undelivered digest keeps accruing.
func (d *Digest) SendWeekly(ctx context.Context) (int, error) {
	since := d.now().Add(-digestWindow)
	entries, err := d.browser.RecentEntries(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("query recent entries: %w", err)
	}

	message := d.buildWeekly(entries, d.tracker.Weekly())
	if err := d.messenger.PostMessage(ctx, d.channel, message); err != nil {
		return len(entries), fmt.Errorf("send digest: %w", err)
	}
	d.tracker.ResetWeekly()

	d.log.Info("weekly digest sent", zap.Int("entries", len(entries)))
	return len(entries), nil
}

// CheckDailyCost posts an alert when accumulated daily spend exceeds
// the threshold, then starts a fresh day. The accumulator is kept
// intact when the alert cannot be delivered.
func (d *Digest) CheckDailyCost(ctx context.Context) (float64, bool, error) {
	daily := d.tracker.Daily()
	if daily <= d.costLimit {
		d.log.Info("daily cost check ok", zap.Float64("cost_usd", daily))
		d.tracker.ResetDaily()
		return daily, false, nil
	}

	text := fmt.Sprintf("Daily Gemini cost alert: $%.2f exceeds $%.2f threshold", daily, d.costLimit)
	if err := d.messenger.PostMessage(ctx, d.channel, text); err != nil {
		return daily, true, fmt.Errorf("send cost alert: %w", err)
	}
	d.log.Warn("daily cost alert triggered", zap.Float64("cost_usd", daily))
	d.tracker.ResetDaily()
	return daily, true, nil
}

// buildWeekly formats the digest: entry list, category breakdown, top
// tags, and the period's model spend.
func (d *Digest) buildWeekly(entries []domain.EntrySummary, totalCost float64) string {
	if len(entries) == 0 {
		return fmt.Sprintf(
			"No entries processed this week. Service is running.\n*Total Gemini cost:* $%.4f",
			totalCost)
	}

	now := d.now().UTC()
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Weekly Knowledge Base Digest*\n_%s to %s_\n\n",
		now.Add(-digestWindow).Format("Jan 02"), now.Format("Jan 02, 2006"))
	fmt.Fprintf(&sb, "*%d entries processed*\n\n", len(entries))

	for _, entry := range entries {
		if entry.URL != "" {
			fmt.Fprintf(&sb, "- <%s|%s>\n", entry.URL, entry.Title)
		} else {
			fmt.Fprintf(&sb, "- %s\n", entry.Title)
		}
	}
	sb.WriteString("\n")

	categories := make(map[string]int)
	tags := make(map[string]int)
	for _, entry := range entries {
		categories[entry.Category]++
		for _, tag := range entry.Tags {
			tags[tag]++
		}
	}

	categoryParts := make([]string, 0, len(categories))
	for _, p := range byCount(categories, 0) {
		part := fmt.Sprintf("%d %s", p.count, strings.ToLower(p.name))
		if p.count > 1 {
			part += "s"
		}
		categoryParts = append(categoryParts, part)
	}
	fmt.Fprintf(&sb, "*Categories:* %s\n\n", strings.Join(categoryParts, ", "))

	if len(tags) > 0 {
		tagParts := make([]string, 0, 5)
		for _, p := range byCount(tags, 5) {
			tagParts = append(tagParts, fmt.Sprintf("%s (%d)", p.name, p.count))
		}
		fmt.Fprintf(&sb, "*Top tags:* %s\n\n", strings.Join(tagParts, ", "))
	}
	fmt.Fprintf(&sb, "*Total Gemini cost:* $%.4f", totalCost)

	return sb.String()
}

type nameCount struct {
	name  string
	count int
}

// byCount orders entries by count descending, name ascending for ties.
// A limit of 0 keeps everything.
func byCount(counts map[string]int, limit int) []nameCount {
	pairs := make([]nameCount, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, nameCount{name: name, count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
