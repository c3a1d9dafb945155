package docproc

import "strings"

// Category pairs a document type with the keywords that indicate it.
type Category struct {
	Type     DocType
	Keywords []string
}

// ClassifierConfig holds the ordered category list. Order matters: when
// two categories tie on keyword hits, the earlier one wins.
type ClassifierConfig struct {
	Categories []Category
}

// DefaultClassifierConfig returns the built-in insurance document
// categories.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Categories: []Category{
			{DocClaimReport, []string{"claim", "incident", "accident", "damage", "loss"}},
			{DocPolicyDocument, []string{"policy", "terms", "conditions", "coverage", "insurance"}},
			{DocMedicalReport, []string{"diagnosis", "treatment", "medical", "physician", "patient"}},
			{DocInvoice, []string{"invoice", "bill", "payment", "amount", "due"}},
			{DocCorrespondence, []string{"letter", "email", "correspondence", "regarding", "dear"}},
		},
	}
}

// Classifier assigns a DocType to document text by keyword frequency.
// Deterministic; no external calls.
type Classifier struct {
	categories []Category
}

// NewClassifier creates a classifier from the given config. An empty
// config falls back to the defaults.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if len(cfg.Categories) == 0 {
		cfg = DefaultClassifierConfig()
	}
	return &Classifier{categories: cfg.Categories}
}

// Classify lower-cases the text, counts how many of each category's
// keywords appear, and returns the category with the highest non-zero
// count. Each keyword counts once per document. All-zero counts return
// DocOther.
func (c *Classifier) Classify(text string) DocType {
	content := strings.ToLower(text)

	best := DocOther
	bestHits := 0
	for _, cat := range c.categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(content, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = cat.Type
			bestHits = hits
		}
	}
	return best
}
