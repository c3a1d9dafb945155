package docproc

import "testing"

func TestClassifyPicksHighestKeywordCount(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})

	// Three claim keywords against one policy keyword.
	text := "The claim describes an accident with significant damage to the insured vehicle."
	if got := c.Classify(text); got != DocClaimReport {
		t.Fatalf("Classify() = %q, want %q", got, DocClaimReport)
	}
}

func TestClassifyPolicyDocument(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	text := "This policy sets out the terms, conditions, and coverage limits of your insurance."
	if got := c.Classify(text); got != DocPolicyDocument {
		t.Fatalf("Classify() = %q, want %q", got, DocPolicyDocument)
	}
}

func TestClassifyTieGoesToEarlierCategory(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	// One keyword from each of claim_report and policy_document.
	text := "the claim under this policy"
	if got := c.Classify(text); got != DocClaimReport {
		t.Fatalf("Classify() = %q, want %q on tie", got, DocClaimReport)
	}
}

func TestClassifyNoKeywords(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	if got := c.Classify("completely unrelated grocery list"); got != DocOther {
		t.Fatalf("Classify() = %q, want %q", got, DocOther)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	if got := c.Classify("CLAIM FOR ACCIDENT DAMAGE LOSS"); got != DocClaimReport {
		t.Fatalf("Classify() = %q, want %q", got, DocClaimReport)
	}
}

func TestClassifyKeywordCountsOncePerDocument(t *testing.T) {
	c := NewClassifier(ClassifierConfig{})
	// "invoice" repeated five times must not outvote three distinct
	// claim keywords.
	text := "invoice invoice invoice invoice invoice claim accident damage"
	if got := c.Classify(text); got != DocClaimReport {
		t.Fatalf("Classify() = %q, want %q", got, DocClaimReport)
	}
}
