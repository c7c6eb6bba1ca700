// Package cost tracks model token usage and accumulated spend.
package cost

import "sync"

// Gemini Flash pricing, single source of truth.
const (
	inputPricePerToken  = 0.50 / 1_000_000 // $0.50 per 1M input tokens
	outputPricePerToken = 3.00 / 1_000_000 // $3.00 per 1M output tokens
)

// TokenUsage captures token counts and the computed cost of model calls.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
}

// NewTokenUsage computes totals and cost from raw token counts.
func NewTokenUsage(promptTokens, completionTokens int) TokenUsage {
	return TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		CostUSD: float64(promptTokens)*inputPricePerToken +
			float64(completionTokens)*outputPricePerToken,
	}
}

// Merge sums two usages, e.g. a transcription pre-call and the main call.
func Merge(a, b TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
		CostUSD:          a.CostUSD + b.CostUSD,
	}
}

// Tracker accumulates daily and weekly spend across the whole process.
// It is constructed once at startup and injected wherever cost is
// recorded or read; resets happen only through the scheduled endpoints.
type Tracker struct {
	mu     sync.Mutex
	daily  float64
	weekly float64
}

// NewTracker returns a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records the cost of a completed model call.
func (t *Tracker) Add(usage TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.daily += usage.CostUSD
	t.weekly += usage.CostUSD
}

// Daily returns the accumulated spend since the last daily reset.
func (t *Tracker) Daily() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.daily
}

// Weekly returns the accumulated spend since the last weekly reset.
func (t *Tracker) Weekly() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.weekly
}

// ResetDaily zeroes the daily accumulator.
func (t *Tracker) ResetDaily() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.daily = 0
}

// ResetWeekly zeroes the weekly accumulator.
func (t *Tracker) ResetWeekly() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.weekly = 0
}
