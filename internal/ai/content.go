// Package ai holds the content-part vocabulary shared by every pipeline
// stage that hands bytes to a model: embedding candidate chunks (C2/C3's
// knowledge text), document pages handed to the OCR reader, and images
// referenced from a fetched page.
package ai

// ContentPart is one part of a model-bound payload: a chunk of text, a
// page's raw bytes plus MIME type, or an image reached by URL.
type ContentPart interface {
	isContentPart()
}

// TextContent is a plain text span, the only part kind the embedder and the
// chunker ever see.
type TextContent struct {
	Text string
}

func (tc TextContent) isContentPart() {}

// BinaryContent is a single decoded page (one image, or one PDF page
// rendered to an image) handed to reading.Reader for OCR.
type BinaryContent struct {
	MIMEType string
	Data     []byte
}

func (bc BinaryContent) isContentPart() {}

// NewBinaryContent wraps data as a single BinaryContent page.
func NewBinaryContent(mimeType string, data []byte) BinaryContent {
	return BinaryContent{MIMEType: mimeType, Data: data}
}

// ImageURLContent references an image that fetch found on a visited page
// but has not downloaded; kept distinct from BinaryContent so a collaborator
// can defer the fetch.
type ImageURLContent struct {
	URL string
}

func (iuc ImageURLContent) isContentPart() {}
