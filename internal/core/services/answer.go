package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// promptOverheadTokens covers the instruction scaffolding around the
// context fragments and question.
const promptOverheadTokens = 80

// Ask answers a question from the indexed documents.
func (s *PipelineService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	question := strings.TrimSpace(query.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if query.TopK <= 0 {
		query.TopK = s.cfg.TopK
	}
	if query.MinScore <= 0 {
		query.MinScore = s.cfg.MinScore
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking index: %w", err)
	}
	if count == 0 {
		logger.Debug("ask: index is empty")
		return &domain.Answer{Question: question, Text: domain.NoAnswerText}, nil
	}

	retrieved, err := s.retrieve(ctx, question, query.TopK, query.MinScore)
	if err != nil {
		return nil, err
	}
	if len(retrieved) == 0 {
		logger.Debug("ask: no fragments above threshold")
		return &domain.Answer{Question: question, Text: domain.NoAnswerText}, nil
	}

	kept := s.fitContextBudget(question, retrieved)
	prompt := buildPrompt(question, kept)

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]domain.Provenance, len(kept))
	for i, rf := range kept {
		sources[i] = domain.Provenance{
			FragmentID:    rf.Fragment.ID,
			DocumentID:    rf.Fragment.DocumentID,
			DocumentTitle: rf.Document.Title,
			Position:      rf.Fragment.Position,
			Score:         rf.Score,
		}
	}

	return &domain.Answer{
		Question: question,
		Text:     strings.TrimSpace(text),
		Sources:  sources,
	}, nil
}

// retrieve embeds the question and returns the best-matching fragments
// with their parent documents, ranked by descending similarity.
func (s *PipelineService) retrieve(ctx context.Context, question string, topK int, minScore float64) ([]domain.RetrievedFragment, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, topK, minScore)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	docCache := make(map[string]domain.Document)
	retrieved := make([]domain.RetrievedFragment, 0, len(hits))
	for _, hit := range hits {
		doc, ok := docCache[hit.Fragment.DocumentID]
		if !ok {
			found, err := s.docs.GetDocument(ctx, hit.Fragment.DocumentID)
			if err != nil {
				// Index entry without a document record; still usable
				// as context, just unnamed.
				found = &domain.Document{ID: hit.Fragment.DocumentID}
			}
			doc = *found
			docCache[doc.ID] = doc
		}
		retrieved = append(retrieved, domain.RetrievedFragment{
			Fragment: hit.Fragment,
			Document: doc,
			Score:    hit.Score,
		})
	}
	return retrieved, nil
}

// fitContextBudget drops lowest-ranked fragments until the prompt fits
// the model's context window. The top-ranked fragment is always kept.
func (s *PipelineService) fitContextBudget(question string, retrieved []domain.RetrievedFragment) []domain.RetrievedFragment {
	budget := s.cfg.ContextBudget - s.cfg.AnswerReserve - domain.EstimateTokens(question) - promptOverheadTokens

	kept := retrieved
	used := 0
	for i, rf := range retrieved {
		tokens := rf.Fragment.TokenEstimate
		if tokens == 0 {
			tokens = domain.EstimateTokens(rf.Fragment.Content)
		}
		if i > 0 && used+tokens > budget {
			kept = retrieved[:i]
			break
		}
		used += tokens
	}

	if len(kept) < len(retrieved) {
		logger.Debug("ask: dropped %d fragments to fit context budget", len(retrieved)-len(kept))
	}
	return kept
}

// buildPrompt assembles the grounded generation prompt.
func buildPrompt(question string, retrieved []domain.RetrievedFragment) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below.\n")
	b.WriteString("If the context does not contain the answer, reply exactly: ")
	b.WriteString(domain.NoAnswerText)
	b.WriteString("\n\nContext:\n")

	for i, rf := range retrieved {
		title := rf.Document.Title
		if title == "" {
			title = rf.Document.ID
		}
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, title, rf.Fragment.Content)
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
