package docproc

import "time"

// DocType is the coarse document category assigned by the classifier.
type DocType string

const (
	DocClaimReport    DocType = "claim_report"
	DocPolicyDocument DocType = "policy_document"
	DocMedicalReport  DocType = "medical_report"
	DocInvoice        DocType = "invoice"
	DocCorrespondence DocType = "correspondence"
	DocOther          DocType = "other"
)

// Structure describes whether a document has recurring section headers.
type Structure string

const (
	StructureStructured Structure = "structured"
	StructureStandard   Structure = "standard"
)

// Document is the raw unit of input. It exists only while its chunks are
// being extracted; after processing, only the chunks survive.
type Document struct {
	ID         string
	Name       string
	Type       DocType
	Structure  Structure
	IngestedAt time.Time
}

// Chunk is the atomic retrievable unit: a bounded span of normalized
// document text plus the metadata needed to cite it back to its source.
type Chunk struct {
	ID        int64     // unique within one processed chunk set, 1-based
	Text      string    // non-empty, length bounded by the chunker profile
	DocID     string    // owning document id (weak reference)
	DocName   string    // source file name
	DocType   DocType   // classifier label of the owning document
	Kind      Structure // chunking strategy that produced this chunk
	Seq       int       // sequence index within the source document, 0-based
	Section   string    // header line of the owning section, if any
	WordCount int
	CharCount int
}
