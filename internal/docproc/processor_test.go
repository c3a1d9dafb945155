package docproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProcessTextStandardDocument(t *testing.T) {
	p := NewProcessor(DefaultProcessorConfig())

	text := "The claim describes an accident on the highway. The resulting damage " +
		"to the vehicle was assessed as a total loss by the adjuster."
	res := p.ProcessText("claim-001.txt", text)

	if res.Processed != 1 {
		t.Fatalf("Processed = %d, want 1", res.Processed)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	for i, c := range res.Chunks {
		if c.ID != int64(i)+1 {
			t.Errorf("chunk %d: ID = %d, want %d", i, c.ID, i+1)
		}
		if c.Seq != i {
			t.Errorf("chunk %d: Seq = %d, want %d", i, c.Seq, i)
		}
		if c.DocName != "claim-001.txt" {
			t.Errorf("chunk %d: DocName = %q", i, c.DocName)
		}
		if c.DocType != DocClaimReport {
			t.Errorf("chunk %d: DocType = %q, want %q", i, c.DocType, DocClaimReport)
		}
		if c.Kind != StructureStandard {
			t.Errorf("chunk %d: Kind = %q, want %q", i, c.Kind, StructureStandard)
		}
		if c.WordCount != len(strings.Fields(c.Text)) {
			t.Errorf("chunk %d: WordCount = %d, want %d", i, c.WordCount, len(strings.Fields(c.Text)))
		}
		if c.CharCount != len(c.Text) {
			t.Errorf("chunk %d: CharCount = %d, want %d", i, c.CharCount, len(c.Text))
		}
	}
}

func TestProcessTextStructuredDocumentTagsSections(t *testing.T) {
	p := NewProcessor(DefaultProcessorConfig())

	var b strings.Builder
	for i := 1; i <= 8; i++ {
		b.WriteString("SECTION ")
		b.WriteByte(byte('0' + i))
		b.WriteString("\nThe policy coverage terms for this part of the insurance contract.\n\n")
	}
	res := p.ProcessText("policy.txt", b.String())

	if res.Processed != 1 {
		t.Fatalf("Processed = %d, want 1 (errors: %v)", res.Processed, res.Errors)
	}
	if len(res.Chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for _, c := range res.Chunks {
		if c.Kind != StructureStructured {
			t.Fatalf("Kind = %q, want %q", c.Kind, StructureStructured)
		}
		if !strings.HasPrefix(c.Section, "SECTION ") {
			t.Fatalf("Section = %q, want SECTION header", c.Section)
		}
	}
}

func TestProcessTextEmptyContentSkipped(t *testing.T) {
	p := NewProcessor(DefaultProcessorConfig())

	res := p.ProcessText("noise.txt", "$$$ %%% @@@")
	if res.Processed != 0 || res.Skipped != 1 {
		t.Fatalf("Processed/Skipped = %d/%d, want 0/1", res.Processed, res.Skipped)
	}
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", res.Errors)
	}
}

func TestProcessFilesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "claim.txt")
	if err := os.WriteFile(good, []byte("claim for water damage after the incident"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "does-not-exist.txt")

	p := NewProcessor(DefaultProcessorConfig())
	res := p.ProcessFiles(context.Background(), []string{missing, good})

	if res.Processed != 1 {
		t.Fatalf("Processed = %d, want 1", res.Processed)
	}
	if res.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", res.Skipped)
	}
	if len(res.Errors) != 1 || res.Errors[0].Source != missing {
		t.Fatalf("expected one error for %s, got %v", missing, res.Errors)
	}
	if len(res.Chunks) == 0 {
		t.Fatal("expected chunks from the readable file")
	}
}

func TestProcessFilesChunkIDsUniqueAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("claim report describing accident damage and loss details"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := NewProcessor(DefaultProcessorConfig())
	res := p.ProcessFiles(context.Background(), []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	})

	seen := map[int64]bool{}
	for _, c := range res.Chunks {
		if seen[c.ID] {
			t.Fatalf("duplicate chunk ID %d", c.ID)
		}
		seen[c.ID] = true
	}
	if res.Processed != 2 {
		t.Fatalf("Processed = %d, want 2", res.Processed)
	}
}
