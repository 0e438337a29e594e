package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const prioritizePrompt = `You are an AI assistant for municipal staff. Your task is to prioritize public issue reports based on urgency and potential impact. Analyze the description and photo to determine a priority level (High, Medium, or Low).

Prioritization Guidelines:
- High: Poses an immediate threat to public safety or can cause significant property damage (e.g., major water leak, fallen power lines, large sinkhole).
- Medium: Disrupts public services or quality of life but is not an immediate danger (e.g., overflowing trash, broken streetlight, large graffiti).
- Low: Minor cosmetic issues or inconveniences (e.g., small pothole, minor graffiti).

Description: %s

Respond with a JSON object containing the 'priority' and a concise 'reason' for your decision.`

// contentGenerator is the slice of genai.Models the prioritizer calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiPrioritizer asks a Gemini model for a priority.
type GeminiPrioritizer struct {
	models contentGenerator
	model  string
}

func NewGeminiPrioritizer(ctx context.Context, apiKey, model string) (*GeminiPrioritizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiPrioritizer{models: client.Models, model: model}, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"priority": {
				Type:        genai.TypeString,
				Enum:        []string{"High", "Medium", "Low"},
				Description: "The priority of the issue report, can be High, Medium, or Low.",
			},
			"reason": {
				Type:        genai.TypeString,
				Description: "A concise, one-sentence reason for the assigned priority, written for a city official.",
			},
		},
		Required: []string{"priority", "reason"},
	}
}

func (g *GeminiPrioritizer) Prioritize(ctx context.Context, in PrioritizeInput) (*PrioritizeResult, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(prioritizePrompt, in.Description)),
	}
	if len(in.Photo) > 0 && in.PhotoMIME != "" {
		parts = append(parts, genai.NewPartFromBytes(in.Photo, in.PhotoMIME))
	}

	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	return parseResult(resp.Text())
}

func parseResult(text string) (*PrioritizeResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var result PrioritizeResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if err := result.normalize(); err != nil {
		return nil, err
	}
	return &result, nil
}
