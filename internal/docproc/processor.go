package docproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimlens/claimlens/internal/chunk"
)

// ErrEmptyContent marks a document whose text normalized to nothing.
// Recoverable: the document is skipped and siblings keep processing.
var ErrEmptyContent = errors.New("document normalized to empty content")

// ProcessorConfig assembles the policies for one processing pipeline.
type ProcessorConfig struct {
	Classifier ClassifierConfig
	Structure  StructureConfig
	Structured chunk.Profile // profile for section-split documents
	Standard   chunk.Profile // profile for prose documents
}

// DefaultProcessorConfig returns the built-in pipeline policies.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Classifier: DefaultClassifierConfig(),
		Structure:  DefaultStructureConfig(),
		Structured: chunk.StructuredProfile(),
		Standard:   chunk.StandardProfile(),
	}
}

// ProcessError records a non-fatal failure for one source document.
type ProcessError struct {
	Source string
	Err    error
}

func (e ProcessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e ProcessError) Unwrap() error { return e.Err }

// Result aggregates one processing run. Errors never abort sibling
// documents; callers inspect Errors to report skipped sources.
type Result struct {
	Processed int
	Skipped   int
	Chunks    []Chunk
	Errors    []ProcessError
}

// Processor runs the normalize → classify → detect → split → chunk
// pipeline over documents.
type Processor struct {
	classifier *Classifier
	detector   *Detector
	structured *chunk.Splitter
	standard   *chunk.Splitter
}

// NewProcessor builds a processor from the given config. Zero-value
// profiles fall back to package defaults.
func NewProcessor(cfg ProcessorConfig) *Processor {
	structured := cfg.Structured
	if structured.Size == 0 && len(structured.Separators) == 0 {
		structured = chunk.StructuredProfile()
	}
	standard := cfg.Standard
	if standard.Size == 0 && len(standard.Separators) == 0 {
		standard = chunk.StandardProfile()
	}
	return &Processor{
		classifier: NewClassifier(cfg.Classifier),
		detector:   NewDetector(cfg.Structure),
		structured: chunk.NewSplitter(structured),
		standard:   chunk.NewSplitter(standard),
	}
}

// ProcessFiles reads each path as extracted document text and runs the
// pipeline. Unreadable files and files that normalize to empty are
// recorded in Result.Errors and skipped; the rest keep processing.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) *Result {
	res := &Result{}
	for _, path := range paths {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, ProcessError{Source: path, Err: ctx.Err()})
			res.Skipped++
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, ProcessError{Source: path, Err: fmt.Errorf("reading source: %w", err)})
			res.Skipped++
			continue
		}
		p.processText(res, filepath.Base(path), string(data))
	}
	return res
}

// ProcessText runs the pipeline over in-memory document text under the
// given source name.
func (p *Processor) ProcessText(name, text string) *Result {
	res := &Result{}
	p.processText(res, name, text)
	return res
}

func (p *Processor) processText(res *Result, name, text string) {
	// Classify on the raw text: noise characters don't disturb keyword
	// hits, and the classifier lower-cases anyway.
	docType := p.classifier.Classify(text)

	cleaned := NormalizeLines(text)
	if cleaned == "" {
		res.Errors = append(res.Errors, ProcessError{Source: name, Err: ErrEmptyContent})
		res.Skipped++
		return
	}

	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       docType,
		Structure:  p.detector.Detect(cleaned),
		IngestedAt: time.Now().UTC(),
	}

	seq := 0
	emit := func(text, section string) {
		res.Chunks = append(res.Chunks, Chunk{
			ID:        int64(len(res.Chunks)) + 1,
			Text:      text,
			DocID:     doc.ID,
			DocName:   doc.Name,
			DocType:   doc.Type,
			Kind:      doc.Structure,
			Seq:       seq,
			Section:   section,
			WordCount: len(strings.Fields(text)),
			CharCount: len(text),
		})
		seq++
	}

	if doc.Structure == StructureStructured {
		// Chunk per section so no chunk crosses a section boundary,
		// even when that leaves it shorter than the target size.
		for _, section := range SplitSections(cleaned) {
			header := sectionHeader(section)
			for _, text := range p.structured.Split(section) {
				emit(text, header)
			}
		}
	} else {
		for _, text := range p.standard.Split(cleaned) {
			emit(text, "")
		}
	}

	res.Processed++
}

// sectionHeader returns the header line of a section, or "" when the
// section has no recognized header (the no-headers single-section case).
func sectionHeader(section string) string {
	first, _, _ := strings.Cut(section, "\n")
	first = strings.TrimSpace(first)
	if isHeaderLine(first) {
		return first
	}
	return ""
}
