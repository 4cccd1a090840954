// Package chunker splits extracted document text into overlapping spans
// sized for the embedding model.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter produces spans of at most chunkSize runes, preferring to cut
// on paragraph boundaries, then sentence boundaries, falling back to a
// hard cut only when a single unit exceeds the chunk size. Consecutive
// spans share the last overlap runes of the previous span.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. Overlap must be strictly less than chunk size
// and chunk size must be positive; violations fail with
// domain.ErrInvalidChunkConfig before any text is processed.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d with chunk size %d",
			domain.ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split returns ordered spans covering text. Empty or whitespace-only
// text yields zero spans.
func (s *Splitter) Split(text string) []driven.Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)

	spans := make([]driven.Span, 0, total/(s.chunkSize-s.overlap)+1)
	start := 0

	for start < total {
		end := start + s.chunkSize
		if end >= total {
			end = total
		} else {
			end = s.cutPoint(runes, start, end)
		}

		spans = append(spans, driven.Span{
			Content: string(runes[start:end]),
			Start:   start,
			End:     end,
		})

		if end == total {
			break
		}

		next := end - s.overlap
		if next <= start {
			// Overlap would reprocess the whole span; step past it.
			next = end
		}
		start = next
	}

	return spans
}

// cutPoint finds the best boundary in (start, limit]. Paragraph breaks
// win over sentence ends; a hard cut at limit is the last resort.
func (s *Splitter) cutPoint(runes []rune, start, limit int) int {
	if p := lastParagraphBreak(runes, start, limit); p > start {
		return p
	}
	if p := lastSentenceEnd(runes, start, limit); p > start {
		return p
	}
	return limit
}

// lastParagraphBreak returns the position just after the last blank
// line within (start, limit], or start when there is none.
func lastParagraphBreak(runes []rune, start, limit int) int {
	for i := limit - 1; i > start; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	return start
}

// lastSentenceEnd returns the position just after the last sentence
// terminator within (start, limit], or start when there is none. A
// terminator is . ! ? followed by whitespace, or a newline.
func lastSentenceEnd(runes []rune, start, limit int) int {
	for i := limit - 1; i > start; i-- {
		r := runes[i]
		if r == '\n' {
			return i + 1
		}
		if (r == '.' || r == '!' || r == '?') && i+1 < limit && isSpace(runes[i+1]) {
			return i + 1
		}
	}
	return start
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
