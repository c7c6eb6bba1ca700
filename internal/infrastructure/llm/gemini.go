package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"knowledgehub/internal/cost"
	"knowledgehub/internal/errs"
)

// GenerateRequest is one model call. MediaURI, when set, attaches the
// remote file (a video URL) alongside the text part. Structured requests
// constrain the response to the analysis JSON schema.
type GenerateRequest struct {
	System      string
	Text        string
	MediaURI    string
	Structured  bool
	Temperature float32
}

// ModelClient is the seam between the analysis engine and the Gemini
// SDK, kept narrow so tests can script model behavior.
type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (string, cost.TokenUsage, error)
}

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ ModelClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed model client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate runs one content-generation call and reports token usage.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, cost.TokenUsage, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	if req.MediaURI != "" {
		parts = append(parts, &genai.Part{FileData: &genai.FileData{FileURI: req.MediaURI}})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Structured {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = analysisSchema()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", cost.TokenUsage{}, classifyAPIError(err)
	}

	var usage cost.TokenUsage
	if resp.UsageMetadata != nil {
		usage = cost.NewTokenUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
	}
	return resp.Text(), usage, nil
}

// classifyAPIError maps SDK errors onto the retry taxonomy by status code.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errs.E(errs.KindFromHTTPStatus(apiErr.Code), "llm.generate", err)
	}
	return fmt.Errorf("llm.generate: %w", err)
}

func analysisSchema() *genai.Schema {
	stringArray := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
	learning := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":            {Type: genai.TypeString},
			"what":             {Type: genai.TypeString},
			"why_it_matters":   {Type: genai.TypeString},
			"how_to_apply":     stringArray,
			"resources_needed": {Type: genai.TypeString},
			"estimated_time":   {Type: genai.TypeString},
		},
		Required: []string{"title", "what", "why_it_matters", "how_to_apply", "estimated_time"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":           {Type: genai.TypeString},
			"author":          {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"summary":         {Type: genai.TypeString},
			"category":        {Type: genai.TypeString},
			"priority":        {Type: genai.TypeString},
			"tags":            stringArray,
			"summary_section": {Type: genai.TypeString},
			"key_points":      stringArray,
			"key_learnings":   {Type: genai.TypeArray, Items: learning},
			"detailed_notes":  {Type: genai.TypeString},
		},
		Required: []string{
			"title", "summary", "category", "priority", "tags",
			"summary_section", "key_points", "key_learnings", "detailed_notes",
		},
	}
}
