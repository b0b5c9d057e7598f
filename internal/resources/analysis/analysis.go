package analysis

import (
	"context"
	"errors"
)

var (
	ErrEmptyImage        = errors.New("image is empty")
	ErrMalformedResponse = errors.New("malformed analysis response")
)

const (
	AuthenticityReal        = "REAL"
	AuthenticityAIGenerated = "AI_GENERATED"
)

// AIAnalysis is the outcome of the image classifier for a single crop photograph
type AIAnalysis struct {
	HealthScore    int      `json:"healthScore"     yaml:"healthScore"`
	DetectedStage  string   `json:"detectedStage"   yaml:"detectedStage"`
	Ripeness       string   `json:"ripeness,omitempty"   yaml:"ripeness,omitempty"`
	Grade          string   `json:"grade,omitempty"      yaml:"grade,omitempty"`
	Issues         []string `json:"issues,omitempty"     yaml:"issues,omitempty"`
	FreshnessScore int      `json:"freshnessScore"  yaml:"freshnessScore"`
	FraudAlert     bool     `json:"fraudAlert"      yaml:"fraudAlert"`
	Prediction     string   `json:"prediction,omitempty" yaml:"prediction,omitempty"`
}

func (a *AIAnalysis) Clone() *AIAnalysis {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Issues != nil {
		cp.Issues = append([]string(nil), a.Issues...)
	}
	return &cp
}

type Request struct {
	Image    []byte
	MimeType string
	CropName string // e.g. "Alphonso Mango"
	Stage    string // stage reported by the farmer, e.g. "HARVEST"
}

type Analyzer interface {
	Analyze(ctx context.Context, req Request) (AIAnalysis, error)
}

// Result is either a successful analysis or a failure reason. A failure means the authenticity
// of the image is unknown, it must not be treated as real or fake
type Result struct {
	analysis *AIAnalysis
	reason   string
}

func Success(a AIAnalysis) Result {
	return Result{analysis: &a}
}

func Failure(reason string) Result {
	if reason == "" {
		reason = "unknown"
	}
	return Result{reason: reason}
}

func (r Result) IsSuccess() bool {
	return r.analysis != nil
}

// Analysis returns the analysis and true for a successful result
func (r Result) Analysis() (AIAnalysis, bool) {
	if r.analysis == nil {
		return AIAnalysis{}, false
	}
	return *r.analysis, true
}

func (r Result) FailureReason() string {
	if r.analysis != nil {
		return ""
	}
	if r.reason == "" {
		return "no analysis"
	}
	return r.reason
}
