package assess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/claimlens/claimlens/internal/docproc"
	"github.com/claimlens/claimlens/internal/llm"
	"github.com/claimlens/claimlens/internal/retrieve"
)

// fakeProvider returns a canned completion and records the request.
type fakeProvider struct {
	response   string
	err        error
	lastPrompt string
	lastOpts   llm.CompletionOpts
}

func (f *fakeProvider) Complete(ctx context.Context, prompt string, opts llm.CompletionOpts) (string, error) {
	f.lastPrompt = prompt
	f.lastOpts = opts
	return f.response, f.err
}

func (f *fakeProvider) Name() string { return "fake/model" }

func sampleHits() []retrieve.ScoredChunk {
	return []retrieve.ScoredChunk{
		{
			Chunk: docproc.Chunk{
				ID: 1, Text: "Water damage reported in the kitchen.",
				DocName: "claim.txt", DocType: docproc.DocClaimReport,
			},
			Score: 0.016,
		},
		{
			Chunk: docproc.Chunk{
				ID: 2, Text: "Flood damage is excluded under section 4.",
				DocName: "policy.txt", DocType: docproc.DocPolicyDocument,
			},
			Score: 0.008,
		},
	}
}

const sampleJSON = `{
	"risk_score": 0.7,
	"risk_factors": ["possible flood exclusion"],
	"policy_violations": [],
	"documentation_gaps": ["no plumber invoice"],
	"risk_indicators": ["late reporting"],
	"validity_assessment": "Claim may fall under the flood exclusion.",
	"recommended_actions": ["request cause-of-loss report"],
	"confidence_score": 0.85
}`

func TestAnalyze(t *testing.T) {
	p := &fakeProvider{response: sampleJSON}
	a, err := NewAnalyzer(p).Analyze(context.Background(), sampleHits(), "Is the water damage covered?")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if a.RiskScore != 0.7 {
		t.Errorf("RiskScore = %v, want 0.7", a.RiskScore)
	}
	if a.ConfidenceScore != 0.85 {
		t.Errorf("ConfidenceScore = %v, want 0.85", a.ConfidenceScore)
	}
	if len(a.RiskFactors) != 1 || a.RiskFactors[0] != "possible flood exclusion" {
		t.Errorf("RiskFactors = %v", a.RiskFactors)
	}

	if p.lastOpts.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", p.lastOpts.Temperature)
	}
	if p.lastOpts.Format != "json" {
		t.Errorf("Format = %q, want json", p.lastOpts.Format)
	}
	if p.lastOpts.System == "" {
		t.Error("expected a system prompt")
	}
	if !strings.Contains(p.lastPrompt, "Question: Is the water damage covered?") {
		t.Errorf("prompt missing question: %q", p.lastPrompt)
	}
	if !strings.Contains(p.lastPrompt, "Source: claim.txt") {
		t.Errorf("prompt missing context source: %q", p.lastPrompt)
	}
}

func TestAnalyzeNoContext(t *testing.T) {
	p := &fakeProvider{response: sampleJSON}
	_, err := NewAnalyzer(p).Analyze(context.Background(), nil, "question")
	if !errors.Is(err, ErrNoContext) {
		t.Fatalf("err = %v, want ErrNoContext", err)
	}
}

func TestAnalyzeProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("rate limited")}
	_, err := NewAnalyzer(p).Analyze(context.Background(), sampleHits(), "question")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}

func TestFormatContext(t *testing.T) {
	got := FormatContext(sampleHits())
	want := "Source: claim.txt\nType: claim_report\nContent: Water damage reported in the kitchen.\n\n" +
		"Source: policy.txt\nType: policy_document\nContent: Flood damage is excluded under section 4."
	if got != want {
		t.Fatalf("FormatContext:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestParseAssessmentStripsFences(t *testing.T) {
	fenced := "```json\n" + sampleJSON + "\n```"
	a, err := ParseAssessment(fenced)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.RiskScore != 0.7 {
		t.Fatalf("RiskScore = %v, want 0.7", a.RiskScore)
	}
}

func TestParseAssessmentClampsScores(t *testing.T) {
	a, err := ParseAssessment(`{"risk_score": 1.8, "confidence_score": -0.3}`)
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if a.RiskScore != 1 {
		t.Errorf("RiskScore = %v, want clamped to 1", a.RiskScore)
	}
	if a.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %v, want clamped to 0", a.ConfidenceScore)
	}
}

func TestParseAssessmentInvalidJSON(t *testing.T) {
	if _, err := ParseAssessment("not json at all"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
