package chunking

// ChunkOptions configures a Chunk call. Hand-written replacement for the
// oapi-codegen-generated type the teacher derived from openapi.yaml (not
// present in the retrieved pack); fields reconstructed from the model's
// two named tokenizer schemes and the spec's cherry-pick chunk sizing.
type ChunkOptions struct {
	// Model selects the tokenizer used to measure chunk size (ModelFixedBert or ModelFixedBPE).
	Model string

	// MaxTokens bounds the size of each chunk (0 = chunker default).
	MaxTokens int

	// Overlap is the number of tokens shared between consecutive chunks.
	Overlap int
}

// Chunk is one span of text produced by a Chunker.
type Chunk struct {
	Text        string
	StartOffset int
	EndOffset   int
	TokenCount  int
}
