package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GenAIGenerator generates chat replies with a Gemini text model
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return res.Text(), nil
}

// StaticGenerator answers every prompt with the same text, used when no model is configured
type StaticGenerator struct {
	Text string
}

func (s StaticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.Text, nil
}
