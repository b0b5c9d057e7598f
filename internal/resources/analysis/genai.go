package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fasalsetu/agrilink/internal/lib"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

const promptTemplate = `You are a forensic and agricultural auditor.
TASK:
1. SECURITY AUDIT: decide whether the image is a genuine real-world photograph taken in an orchard or field,
   or a synthetic/AI-generated image (artifacts, surreal lighting, perfect leaves, screen moire patterns).
   The value MUST be "REAL" or "AI_GENERATED".
2. CROP AUDIT: analyze this %s at the %s stage.
   - healthScore from 0 to 100
   - visible issues or diseases
   - whether the visual stage matches the reported stage "%s"
3. PREDICTION: estimate the harvest timeline based on ripeness.

Return ONLY JSON:
{
  "authenticity": "REAL" | "AI_GENERATED",
  "authenticityReason": string,
  "healthScore": number,
  "issues": string[],
  "freshness": number,
  "grade": "A" | "B" | "C",
  "detectedStage": string,
  "prediction": string
}`

// response is the JSON document the model is asked to produce
type response struct {
	Authenticity       string   `json:"authenticity"`
	AuthenticityReason string   `json:"authenticityReason"`
	HealthScore        float64  `json:"healthScore"`
	Issues             []string `json:"issues"`
	Freshness          float64  `json:"freshness"`
	Grade              string   `json:"grade"`
	DetectedStage      string   `json:"detectedStage"`
	Prediction         string   `json:"prediction"`
}

// GenAIAnalyzer classifies crop photographs with a Gemini vision model
type GenAIAnalyzer struct {
	client *genai.Client
	model  string
}

func NewGenAIAnalyzer(ctx context.Context, apiKey, model string) (*GenAIAnalyzer, error) {
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

	return &GenAIAnalyzer{client: client, model: model}, nil
}

func (g *GenAIAnalyzer) Analyze(ctx context.Context, req Request) (AIAnalysis, error) {
	if len(req.Image) == 0 {
		return AIAnalysis{}, ErrEmptyImage
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image, mimeType),
			genai.NewPartFromText(BuildPrompt(req.CropName, req.Stage)),
		}, genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return AIAnalysis{}, fmt.Errorf("GenAI analysis failed: %w", err)
	}

	return ParseResponse(res.Text())
}

func BuildPrompt(cropName, stage string) string {
	if cropName == "" {
		cropName = "crop"
	}
	if stage == "" {
		stage = "GENERAL"
	}
	return fmt.Sprintf(promptTemplate, cropName, stage, stage)
}

// ParseResponse extracts the JSON object from the model output, which may be wrapped in prose or code fences
func ParseResponse(text string) (AIAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return AIAnalysis{}, lib.WrapErrorf(ErrMalformedResponse, "no json object in %q", truncate(text, 80))
	}

	var r response
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return AIAnalysis{}, lib.WrapError(ErrMalformedResponse, err)
	}

	var fraud bool
	switch authenticity := strings.TrimSpace(r.Authenticity); {
	case strings.EqualFold(authenticity, AuthenticityAIGenerated):
		fraud = true
	case strings.EqualFold(authenticity, AuthenticityReal):
	default:
		return AIAnalysis{}, lib.WrapErrorf(ErrMalformedResponse, "unknown authenticity %q", truncate(authenticity, 40))
	}

	prediction := r.Prediction
	if r.AuthenticityReason != "" {
		prediction = strings.TrimSpace(fmt.Sprintf("%s [Security: %s]", prediction, r.AuthenticityReason))
	}

	return AIAnalysis{
		HealthScore:    clampScore(r.HealthScore),
		DetectedStage:  r.DetectedStage,
		Grade:          r.Grade,
		Issues:         r.Issues,
		FreshnessScore: clampScore(r.Freshness),
		FraudAlert:     fraud,
		Prediction:     prediction,
	}, nil
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
