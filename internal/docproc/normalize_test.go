package docproc

import "testing"

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("claim   report\n\nfiled\ttoday")
	want := "claim report filed today"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeStripsDisallowedRunes(t *testing.T) {
	got := Normalize("total: $1,200 @ 5% — net")
	want := "total: 1,200 5 net"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeKeepsAllowedPunctuation(t *testing.T) {
	in := "Deductible (see 2.1): $500; paid?"
	got := Normalize(in)
	want := "Deductible (see 2.1): 500; paid?"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"a @ b",
		"  leading and trailing  ",
		"tabs\tand\nnewlines",
		"already clean text.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize("   \t\n "); got != "" {
		t.Fatalf("Normalize(whitespace) = %q, want empty", got)
	}
}

func TestNormalizeLinesKeepsLineStructure(t *testing.T) {
	in := "SECTION 1\n\n\n\nBody   text here.\n"
	got := NormalizeLines(in)
	want := "SECTION 1\n\nBody text here."
	if got != want {
		t.Fatalf("NormalizeLines() = %q, want %q", got, want)
	}
}

func TestNormalizeLinesIdempotent(t *testing.T) {
	in := "HEADER\n\n\nline one $$\n  line two  "
	once := NormalizeLines(in)
	twice := NormalizeLines(once)
	if once != twice {
		t.Fatalf("NormalizeLines not idempotent: %q != %q", once, twice)
	}
}
