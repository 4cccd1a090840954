package domain

// NoAnswerText is returned when the index holds nothing relevant to the
// question. It is a successful outcome, distinct from any error.
const NoAnswerText = "No relevant information was found in the ingested documents."

// Query is a user question plus retrieval parameters. Queries are
// ephemeral and never persisted.
type Query struct {
	// Question is the natural-language question text.
	Question string

	// TopK is the maximum number of fragments to retrieve.
	TopK int

	// MinScore excludes retrieved fragments scoring below it when > 0.
	MinScore float64
}

// Provenance identifies one fragment used as grounding for an answer,
// in the order it was ranked by retrieval.
type Provenance struct {
	// FragmentID is the fragment used as context.
	FragmentID string

	// DocumentID is the fragment's parent document.
	DocumentID string

	// DocumentTitle is the parent document's display name.
	DocumentTitle string

	// Position is the fragment's ordinal within its document.
	Position int

	// Score is the similarity score from retrieval.
	Score float64
}

// Answer is generated text plus the ordered fragments it was grounded on.
type Answer struct {
	// Question is the question that was asked.
	Question string

	// Text is the generated answer.
	Text string

	// Sources lists the fragments supplied as context, ranked by
	// retrieval score. Empty when no relevant fragments existed.
	Sources []Provenance
}

// RetrievedFragment pairs a fragment with its similarity score and
// parent document metadata, the retriever's output.
type RetrievedFragment struct {
	Fragment Fragment
	Document Document
	Score    float64
}
