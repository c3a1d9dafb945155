package docproc

import (
	"regexp"
	"strings"
	"unicode"
)

// allowedPunct is the punctuation retained by normalization. Everything
// else that is not a letter, digit, or whitespace is stripped as noise
// (OCR artifacts, control characters, stray symbols).
const allowedPunct = ".,?!-()[]{}:;"

// Normalize strips noise characters and collapses all whitespace runs,
// newlines included, to single spaces. Returns "" for empty or
// whitespace-only input. Idempotent: noise characters are removed before
// the whitespace collapse, so deleting them can never leave a double
// space behind.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(filterRunes(raw)), " ")
}

// NormalizeLines applies the same character policy as Normalize but keeps
// line structure: horizontal whitespace collapses within each line, blank
// runs collapse to a single blank line, and newlines survive. Structure
// detection, section splitting, and the chunker separator cascade all
// depend on those boundaries.
func NormalizeLines(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(filterRunes(line)), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// filterRunes keeps letters, digits, allow-listed punctuation, and
// whitespace; everything else is dropped.
func filterRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune(allowedPunct, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
