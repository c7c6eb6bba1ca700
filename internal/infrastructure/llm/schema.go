package llm

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// modelResult is the structured output contract for the analysis call.
type modelResult struct {
	Title          string        `json:"title" validate:"required"`
	Author         *string       `json:"author"`
	Summary        string        `json:"summary" validate:"required"`
	Category       string        `json:"category" validate:"required"`
	Priority       string        `json:"priority" validate:"required"`
	Tags           []string      `json:"tags" validate:"required,min=3,max=7"`
	SummarySection string        `json:"summary_section" validate:"required"`
	KeyPoints      []string      `json:"key_points" validate:"required,min=5,max=10"`
	KeyLearnings   []modelLesson `json:"key_learnings" validate:"required,min=3,max=7,dive"`
	DetailedNotes  string        `json:"detailed_notes" validate:"required"`
}

type modelLesson struct {
	Title           string   `json:"title" validate:"required"`
	What            string   `json:"what" validate:"required"`
	WhyItMatters    string   `json:"why_it_matters" validate:"required"`
	HowToApply      []string `json:"how_to_apply" validate:"required,min=1"`
	ResourcesNeeded string   `json:"resources_needed"`
	EstimatedTime   string   `json:"estimated_time" validate:"required"`
}

// parseResult decodes and validates the model's JSON output. Any
// violation is a schema error, which the caller propagates without a
// retry.
func parseResult(raw string) (modelResult, error) {
	var res modelResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return modelResult{}, errs.E(errs.KindSchema, "llm.parse", fmt.Errorf("decode model output: %w", err))
	}
	if err := validate.Struct(res); err != nil {
		return modelResult{}, errs.E(errs.KindSchema, "llm.parse", fmt.Errorf("validate model output: %w", err))
	}
	if !domain.Category(res.Category).Valid() {
		return modelResult{}, errs.E(errs.KindSchema, "llm.parse", fmt.Errorf("unknown category %q", res.Category))
	}
	if !domain.Priority(res.Priority).Valid() {
		return modelResult{}, errs.E(errs.KindSchema, "llm.parse", fmt.Errorf("unknown priority %q", res.Priority))
	}
	return res, nil
}
