package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitEmptyInput(t *testing.T) {
	s := NewSplitter(StandardProfile())
	if got := s.Split(""); got != nil {
		t.Fatalf("Split(\"\") = %v, want nil", got)
	}
	if got := s.Split("   \n\t "); got != nil {
		t.Fatalf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplitWithinBudgetSingleChunk(t *testing.T) {
	s := NewSplitter(StandardProfile())
	text := "A short claim summary that fits in one chunk."
	got := s.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Fatalf("Split() = %q, want single chunk %q", got, text)
	}
}

func TestSplitRespectsSizeBound(t *testing.T) {
	s := NewSplitter(Profile{Size: 100, Overlap: 20, Separators: []string{"\n\n", "\n", " "}})

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("the adjuster reviewed the damage estimate carefully ")
	}
	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d length %d exceeds size 100: %q", i, len(c), c)
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitOverlapCarriesTrailingText(t *testing.T) {
	s := NewSplitter(Profile{Size: 60, Overlap: 20, Separators: []string{" "}})

	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliet", "kilo", "lima",
		"mike", "november", "oscar", "papa", "quebec", "romeo",
	}
	chunks := s.Split(strings.Join(words, " "))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := strings.Fields(chunks[i-1])
		curHead := strings.Fields(chunks[i])[0]
		found := false
		for _, w := range prevTail {
			if w == curHead {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chunk %d does not start inside chunk %d's tail: %q then %q", i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s := NewSplitter(Profile{Size: 80, Overlap: 0, Separators: []string{"\n\n", "\n", " "}})

	para1 := "First paragraph about the reported incident."
	para2 := "Second paragraph covering the policy terms."
	chunks := s.Split(para1 + "\n\n" + para2)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != para1 || chunks[1] != para2 {
		t.Fatalf("chunks do not follow paragraph boundaries: %q", chunks)
	}
}

func TestSplitHardCutWhenNoSeparators(t *testing.T) {
	s := NewSplitter(Profile{Size: 10, Overlap: 0, Separators: []string{" "}})
	chunks := s.Split(strings.Repeat("x", 35))
	if len(chunks) != 4 {
		t.Fatalf("expected 4 hard-cut chunks, got %d: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len(c) > 10 {
			t.Errorf("chunk %d length %d exceeds 10", i, len(c))
		}
	}
}

func TestSplitHardCutKeepsRunesWhole(t *testing.T) {
	s := NewSplitter(Profile{Size: 5, Overlap: 0, Separators: []string{" "}})

	// Two-byte runes with no separators force hard cuts at byte offsets
	// that would land mid-rune without boundary handling.
	in := strings.Repeat("é", 20)
	chunks := s.Split(in)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
	}
	if got := strings.Join(chunks, ""); got != in {
		t.Fatalf("hard cut dropped characters:\ngot:  %q\nwant: %q", got, in)
	}
}

func TestSplitHardCutOversizedRuneEmittedWhole(t *testing.T) {
	s := NewSplitter(Profile{Size: 2, Overlap: 0, Separators: []string{" "}})

	// A 3-byte rune exceeds the 2-byte budget; it must come out intact.
	in := "日本語"
	chunks := s.Split(in)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 single-rune chunks, got %d: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
	}
}

func TestSplitStructuredProfileReconstruction(t *testing.T) {
	// Zero overlap plus retained separators: concatenating the chunks
	// reproduces the input exactly, up to the whitespace trimmed at
	// chunk edges. Comparing with all whitespace stripped proves no
	// other character is dropped, duplicated, or reordered.
	s := NewSplitter(Profile{Size: 60, Overlap: 0, Separators: []string{"\n\n", "\n", " "}, KeepSeparators: true})

	in := "COVERAGE\nWe insure the dwelling and other structures on the premises.\n\nEXCLUSIONS\nFlood and earth movement are not covered under this part."
	chunks := s.Split(in)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	stripWS := func(str string) string {
		return strings.Join(strings.Fields(str), "")
	}
	got := stripWS(strings.Join(chunks, ""))
	want := stripWS(in)
	if got != want {
		t.Fatalf("concatenated chunks do not reconstruct the input:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestNewSplitterClampsOverlap(t *testing.T) {
	s := NewSplitter(Profile{Size: 100, Overlap: 150, Separators: []string{" "}})
	if s.overlap != 25 {
		t.Fatalf("overlap = %d, want 25 (size/4)", s.overlap)
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(Profile{})
	if s.size != 500 {
		t.Fatalf("size = %d, want 500", s.size)
	}
	if len(s.seps) == 0 {
		t.Fatal("expected default separators")
	}
}
