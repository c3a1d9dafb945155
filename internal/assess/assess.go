// Package assess turns retrieved claim context into a structured risk
// assessment by prompting an LLM and parsing its JSON verdict.
package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/llm"
	"github.com/claimlens/claimlens/internal/retrieve"
)

// ErrNoContext means retrieval produced nothing to assess against.
var ErrNoContext = errors.New("no retrieved context to assess")

const systemPrompt = `You are an expert claims analyst. Analyze the provided document context to assess claim risk and validity. Consider:
1. Policy terms and conditions
2. Claim details and documentation
3. Historical claim patterns
4. Risk factors and red flags

Provide your analysis in the following JSON format:
{
    "risk_score": <float between 0-1>,
    "risk_factors": [<list of identified risk factors>],
    "policy_violations": [<list of policy terms the claim may violate>],
    "documentation_gaps": [<list of missing or incomplete documentation>],
    "risk_indicators": [<list of red flags observed in the documents>],
    "validity_assessment": "<detailed assessment>",
    "recommended_actions": [<list of recommended actions>],
    "confidence_score": <float between 0-1>
}`

// Assessment is the parsed model verdict for one claim question.
type Assessment struct {
	RiskScore          float64  `json:"risk_score"`
	RiskFactors        []string `json:"risk_factors"`
	PolicyViolations   []string `json:"policy_violations"`
	DocumentationGaps  []string `json:"documentation_gaps"`
	RiskIndicators     []string `json:"risk_indicators"`
	ValidityAssessment string   `json:"validity_assessment"`
	RecommendedActions []string `json:"recommended_actions"`
	ConfidenceScore    float64  `json:"confidence_score"`
}

// Analyzer runs risk assessment through an LLM provider.
type Analyzer struct {
	provider llm.Provider
}

// NewAnalyzer wraps an LLM provider.
func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Analyze prompts the model with the retrieved context and question.
// Temperature 0 and JSON output keep repeated runs comparable.
func (a *Analyzer) Analyze(ctx context.Context, hits []retrieve.ScoredChunk, question string) (*Assessment, error) {
	if len(hits) == 0 {
		return nil, ErrNoContext
	}

	prompt := BuildPrompt(FormatContext(hits), question)
	raw, err := a.provider.Complete(ctx, prompt, llm.CompletionOpts{
		Temperature: 0,
		Format:      "json",
		System:      systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("completing assessment: %w", err)
	}

	assessment, err := ParseAssessment(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing assessment from %s: %w", a.provider.Name(), err)
	}
	return assessment, nil
}

// FormatContext renders retrieved chunks as Source/Type/Content blocks
// separated by blank lines, best match first.
func FormatContext(hits []retrieve.ScoredChunk) string {
	blocks := make([]string, len(hits))
	for i, h := range hits {
		blocks[i] = fmt.Sprintf("Source: %s\nType: %s\nContent: %s",
			h.Chunk.DocName, h.Chunk.DocType, h.Chunk.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt combines formatted context and the question into the user
// message.
func BuildPrompt(context, question string) string {
	return fmt.Sprintf("Context: %s\n\nQuestion: %s", context, question)
}

// ParseAssessment parses a model response into an Assessment, tolerating
// a markdown code fence around the JSON. Scores are clamped to [0, 1].
func ParseAssessment(raw string) (*Assessment, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var a Assessment
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("invalid assessment JSON: %w", err)
	}

	a.RiskScore = clamp01(a.RiskScore)
	a.ConfidenceScore = clamp01(a.ConfidenceScore)
	return &a, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
