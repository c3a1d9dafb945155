package docproc

import (
	"regexp"
	"strings"
)

// headerPatterns match the section header shapes common in policy and
// claim paperwork. Compiled with (?m) so they can both count matches
// across whole documents and test single lines.
var headerPatterns = []*regexp.Regexp{
	// Numbered or roman-numeral sections: "3. Deductibles", "2.1 Scope", "IV. Remedies"
	regexp.MustCompile(`(?m)^\s*(?:\d+(?:\.\d+)*|[IVXLC]+)[.)]\s+\S`),
	// ALL-CAPS header lines
	regexp.MustCompile(`(?m)^[A-Z][A-Z0-9 \t&,:\-]{3,}$`),
	// SECTION 1 / ARTICLE IV / CHAPTER 2 / PART 3
	regexp.MustCompile(`(?mi)^\s*(?:SECTION|ARTICLE|CHAPTER|PART)\s+(?:\d+|[IVXLC]+)\b`),
	// Named policy sections
	regexp.MustCompile(`(?mi)^\s*(?:COVERAGE|EXCLUSIONS|DEFINITIONS|CONDITIONS)\b`),
	// APPENDIX A / EXHIBIT 2 / SCHEDULE B
	regexp.MustCompile(`(?mi)^\s*(?:APPENDIX|EXHIBIT|SCHEDULE)\s+[A-Z0-9]`),
}

// DefaultHeaderThreshold is the match count above which a document is
// considered structured. Policy constant, not a hard law; override via
// StructureConfig.
const DefaultHeaderThreshold = 5

// StructureConfig tunes structure detection.
type StructureConfig struct {
	HeaderThreshold int
}

// DefaultStructureConfig returns the built-in detection policy.
func DefaultStructureConfig() StructureConfig {
	return StructureConfig{HeaderThreshold: DefaultHeaderThreshold}
}

// Detector decides whether a document is structured (recurring section
// headers) or standard prose.
type Detector struct {
	threshold int
}

// NewDetector creates a detector. A non-positive threshold falls back to
// the default.
func NewDetector(cfg StructureConfig) *Detector {
	if cfg.HeaderThreshold <= 0 {
		cfg.HeaderThreshold = DefaultHeaderThreshold
	}
	return &Detector{threshold: cfg.HeaderThreshold}
}

// Detect counts header-pattern matches across the whole text. More than
// the configured threshold means structured.
func (d *Detector) Detect(text string) Structure {
	matches := 0
	for _, re := range headerPatterns {
		matches += len(re.FindAllStringIndex(text, -1))
	}
	if matches > d.threshold {
		return StructureStructured
	}
	return StructureStandard
}

// isHeaderLine reports whether a single line matches any header pattern.
func isHeaderLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	for _, re := range headerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// SplitSections splits text at header boundaries. Each header line starts
// a new section and is retained as its first line. Text with no headers
// comes back as a single section. Lines keep their trailing newlines, so
// concatenating the returned sections reproduces the input exactly.
func SplitSections(text string) []string {
	if text == "" {
		return nil
	}

	var sections []string
	var cur strings.Builder

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue // artifact of a trailing newline
		}
		if cur.Len() > 0 && isHeaderLine(strings.TrimSuffix(line, "\n")) {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}
	return sections
}
