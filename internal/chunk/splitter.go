// Package chunk splits normalized document text into bounded, overlapping
// chunks using a recursive separator cascade: prefer paragraph breaks,
// then line breaks, then sentence or word boundaries, and only hard-cut
// when no separator can bring a piece within budget.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Profile configures one chunking strategy.
type Profile struct {
	Size       int      // target chunk size in characters
	Overlap    int      // trailing characters carried into the next chunk
	Separators []string // cascade, tried in order
	// KeepSeparators retains separators inside chunk text. When false,
	// split pieces are re-joined with the separator during merging, so a
	// chunk never ends with one.
	KeepSeparators bool
}

// StructuredProfile is tuned for section-split policy text: large chunks,
// generous overlap, separators retained.
func StructuredProfile() Profile {
	return Profile{
		Size:           1000,
		Overlap:        200,
		Separators:     []string{"\n\n", "\n", " "},
		KeepSeparators: true,
	}
}

// StandardProfile is tuned for prose: smaller chunks, sentence-boundary
// splitting, separators discarded.
func StandardProfile() Profile {
	return Profile{
		Size:       500,
		Overlap:    50,
		Separators: []string{"\n\n", "\n", ".", " "},
	}
}

// Splitter performs recursive character splitting for one profile.
type Splitter struct {
	size    int
	overlap int
	seps    []string
	keep    bool
}

// NewSplitter builds a splitter from a profile. A non-positive size falls
// back to the standard profile size; an overlap at or above the chunk
// size is clamped to a quarter of it rather than rejected.
func NewSplitter(p Profile) *Splitter {
	if p.Size <= 0 {
		p.Size = StandardProfile().Size
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}
	if p.Overlap >= p.Size {
		p.Overlap = p.Size / 4
	}
	if len(p.Separators) == 0 {
		p.Separators = StandardProfile().Separators
	}
	return &Splitter{size: p.Size, overlap: p.Overlap, seps: p.Separators, keep: p.KeepSeparators}
}

// Split chunks text into trimmed, non-empty pieces each at most Size
// characters, with up to Overlap trailing characters of each chunk
// repeated at the start of the next. Empty or whitespace-only input
// yields no chunks; input within budget yields a single chunk.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.size {
		return []string{strings.TrimSpace(text)}
	}
	return s.splitText(text, s.seps)
}

// splitText handles text known to exceed the budget: split on the first
// separator present, merge the in-budget pieces, and recurse on the rest
// of the cascade for any piece still too large.
func (s *Splitter) splitText(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, cand := range seps {
		if strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		// Cascade exhausted for this piece.
		return s.hardCut(text)
	}

	pieces := s.splitOn(text, sep)
	joinSep := sep
	if s.keep {
		joinSep = "" // separators are already embedded in the pieces
	}

	var out []string
	var pending []string
	for _, piece := range pieces {
		if len(piece) <= s.size {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, s.merge(pending, joinSep)...)
			pending = nil
		}
		if len(rest) == 0 {
			out = append(out, s.hardCut(piece)...)
		} else {
			out = append(out, s.splitText(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, s.merge(pending, joinSep)...)
	}
	return out
}

// splitOn splits text on sep, keeping the separator attached to the
// preceding piece when the profile retains separators. Empty pieces are
// dropped.
func (s *Splitter) splitOn(text, sep string) []string {
	var raw []string
	if s.keep {
		raw = strings.SplitAfter(text, sep)
	} else {
		raw = strings.Split(text, sep)
	}
	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// merge greedily packs in-budget pieces into chunks of at most size
// characters. When a chunk is emitted, trailing pieces within the overlap
// budget stay in the window and start the next chunk.
func (s *Splitter) merge(pieces []string, joinSep string) []string {
	sepLen := len(joinSep)

	var chunks []string
	var window []string
	total := 0

	flush := func() {
		doc := strings.TrimSpace(strings.Join(window, joinSep))
		if doc != "" {
			chunks = append(chunks, doc)
		}
	}

	for _, piece := range pieces {
		pl := len(piece)
		if len(window) > 0 && total+pl+sepLen > s.size {
			flush()
			// Shed from the front until the retained tail fits the
			// overlap budget and leaves room for the next piece.
			for total > s.overlap || (total+pl+sepLen > s.size && total > 0) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, piece)
		total += pl
	}
	flush()
	return chunks
}

// hardCut slices text at the size boundary, backed up to the nearest
// rune start so a multi-byte rune is never split. Last resort when no
// separator can reduce a piece below the budget.
func (s *Splitter) hardCut(text string) []string {
	var out []string
	for start := 0; start < len(text); {
		end := start + s.size
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			// A single rune wider than the budget; emit it whole.
			_, n := utf8.DecodeRuneInString(text[start:])
			end = start + n
		}
		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			out = append(out, piece)
		}
		start = end
	}
	return out
}
