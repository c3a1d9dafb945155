// Package docproc turns raw claim and policy document text into tagged,
// retrieval-ready chunks.
//
// The pipeline per document: normalize the extracted text, classify the
// document type by keyword frequency, detect whether the document has a
// recognizable section structure, then split it into bounded overlapping
// chunks: per section for structured documents, whole-text otherwise.
// PDF/OCR text extraction is the caller's concern; docproc consumes
// already-extracted text.
package docproc
