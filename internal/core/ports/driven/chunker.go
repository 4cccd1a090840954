package driven

// Span is one chunk of source text produced by a Chunker.
type Span struct {
	// Content is the overlap-adjusted chunk text.
	Content string

	// Start and End are rune offsets into the source text.
	Start int
	End   int
}

// Chunker splits extracted text into overlapping spans sized for the
// embedding model. Implementations must guarantee that concatenating
// spans (minus declared overlap) reproduces the source text and that no
// span exceeds the configured chunk size.
type Chunker interface {
	// Split returns ordered spans covering text. Empty or
	// whitespace-only text yields zero spans, not an error.
	Split(text string) []Span
}
