package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ingest indexes a single file.
func (s *PipelineService) Ingest(ctx context.Context, path string) (driving.IngestResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	docID := domain.DocumentID(abs)
	result := driving.IngestResult{Path: abs, DocumentID: docID}

	if !s.locks.TryLock(docID) {
		result.Outcome = driving.IngestFailed
		result.Err = fmt.Errorf("%w: %s", domain.ErrIngestInProgress, abs)
		return result, nil
	}
	defer s.locks.Unlock(docID)

	outcome, fragments, err := s.ingestLocked(ctx, abs, docID)
	result.Outcome = outcome
	result.Fragments = fragments
	result.Err = err
	return result, nil
}

// ingestLocked does the work of Ingest with the document lock held.
func (s *PipelineService) ingestLocked(ctx context.Context, path, docID string) (driving.IngestOutcome, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, fmt.Errorf("%w: %s", domain.ErrNotFound, path))
	}
	if info.IsDir() {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID,
			fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path))
	}
	if info.Size() > s.cfg.MaxFileSize {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID,
			fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrInvalidInput, path, info.Size(), s.cfg.MaxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, fmt.Errorf("reading %s: %w", path, err))
	}

	hash := domain.HashContent(data)
	existing, err := s.docs.GetDocument(ctx, docID)
	if err == nil && existing.ContentHash == hash && existing.Status == domain.StatusProcessed {
		logger.Debug("ingest: %s unchanged, skipping", path)
		return driving.IngestSkipped, 0, nil
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	loader, err := s.loaders.Resolve(format)
	if err != nil {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, err)
	}

	raw := &domain.RawDocument{Path: path, Format: format, Content: data}
	text, err := loader.Load(ctx, raw)
	if err != nil {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, err)
	}

	spans := s.chunker.Split(text)
	fragments := make([]domain.Fragment, len(spans))
	contents := make([]string, len(spans))
	for i, span := range spans {
		fragments[i] = domain.Fragment{
			ID:            uuid.NewString(),
			DocumentID:    docID,
			Position:      i,
			Start:         span.Start,
			End:           span.End,
			Content:       span.Content,
			TokenEstimate: domain.EstimateTokens(span.Content),
		}
		contents[i] = span.Content
	}

	if len(fragments) > 0 {
		embeddings, err := s.embedder.EmbedBatch(ctx, contents)
		if err != nil {
			return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, err)
		}
		if len(embeddings) != len(fragments) {
			return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID,
				fmt.Errorf("%w: got %d embeddings for %d fragments",
					domain.ErrEmbeddingUnavailable, len(embeddings), len(fragments)))
		}
		for i := range fragments {
			fragments[i].Embedding = embeddings[i]
		}
	}

	// Replace this document's index entries atomically: the index holds
	// either the prior set or the new set throughout.
	if err := s.index.Upsert(ctx, docID, fragments); err != nil {
		return driving.IngestFailed, 0, s.recordFailure(ctx, path, docID, err)
	}

	doc := &domain.Document{
		ID:            docID,
		Path:          path,
		Title:         filepath.Base(path),
		Format:        format,
		ContentHash:   hash,
		Status:        domain.StatusProcessed,
		FragmentCount: len(fragments),
		IngestedAt:    time.Now().UTC(),
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return driving.IngestFailed, 0, fmt.Errorf("saving document record: %w", err)
	}

	logger.Info("ingest: %s indexed as %d fragments", path, len(fragments))
	return driving.IngestProcessed, len(fragments), nil
}

// recordFailure marks the document failed without touching whatever
// index entries a previous successful ingest produced.
func (s *PipelineService) recordFailure(ctx context.Context, path, docID string, cause error) error {
	doc := &domain.Document{
		ID:     docID,
		Path:   path,
		Title:  filepath.Base(path),
		Format: strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
		Status: domain.StatusFailed,
		Error:  cause.Error(),
	}
	if existing, err := s.docs.GetDocument(ctx, docID); err == nil {
		doc.ContentHash = existing.ContentHash
		doc.FragmentCount = existing.FragmentCount
		doc.IngestedAt = existing.IngestedAt
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		logger.Warn("ingest: recording failure for %s: %v", path, err)
	}
	logger.Warn("ingest: %s failed: %v", path, cause)
	return cause
}

// IngestAll indexes multiple files with bounded parallelism. Results
// come back in input order; a failure in one file never aborts the rest.
func (s *PipelineService) IngestAll(ctx context.Context, paths []string) []driving.IngestResult {
	results := make([]driving.IngestResult, len(paths))

	workers := s.cfg.IngestWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = driving.IngestResult{
						Path:    paths[i],
						Outcome: driving.IngestFailed,
						Err:     err,
					}
					continue
				}
				result, err := s.Ingest(ctx, paths[i])
				if err != nil {
					result.Outcome = driving.IngestFailed
					result.Err = err
				}
				results[i] = result
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// Remove deletes a document and all its index entries.
func (s *PipelineService) Remove(ctx context.Context, documentID string) error {
	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.index.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("removing index entries: %w", err)
	}
	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("removing document record: %w", err)
	}
	logger.Info("remove: %s deleted", documentID)
	return nil
}

// Documents lists all registered documents.
func (s *PipelineService) Documents(ctx context.Context) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx)
}
