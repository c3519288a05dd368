package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatdocs/internal/model"
	"chatdocs/internal/normalize"
	"chatdocs/internal/pkg/pdfextract"
	"chatdocs/internal/pkg/textchunk"
)

const embeddingBatchSize = 10 // embedding providers often cap batch size

var ErrInvalidInput = errors.New("invalid input")

// BlobStore holds the raw uploaded files.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore is the partitioned chunk persistence plus similarity search.
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []model.Chunk) error
	ListDocuments(ctx context.Context) ([]model.DocumentInfo, error)
	DeleteByDocumentID(ctx context.Context, documentID string) (string, bool, error)
	SearchSimilar(ctx context.Context, queryVector []float32, topK int) ([]model.SearchResult, error)
}

// EventPublisher emits document lifecycle events; failures are logged, never
// surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event model.DocumentEvent) error
}

// ExtractPagesFunc is the page-aware text extraction collaborator.
type ExtractPagesFunc func(r io.Reader) ([]pdfextract.Page, error)

// DocumentService ingests, lists and deletes documents.
type DocumentService struct {
	blob      BlobStore
	embedder  Embedder
	chunks    ChunkStore
	publisher EventPublisher
	extract   ExtractPagesFunc

	chunkSize   int
	overlapSize int
	normOpts    normalize.Options
}

func NewDocumentService(
	blob BlobStore,
	embedder Embedder,
	chunks ChunkStore,
	publisher EventPublisher,
	extract ExtractPagesFunc,
	chunkSize, overlapSize int,
) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = textchunk.DefaultChunkSize
	}
	if overlapSize <= 0 {
		overlapSize = textchunk.DefaultOverlapSize
	}
	return &DocumentService{
		blob:        blob,
		embedder:    embedder,
		chunks:      chunks,
		publisher:   publisher,
		extract:     extract,
		chunkSize:   chunkSize,
		overlapSize: overlapSize,
		normOpts:    normalize.DefaultOptions(),
	}
}

// IngestResult is what an upload returns to the caller.
type IngestResult struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	ChunkCount   int    `json:"chunkCount"`
}

// Ingest stores the raw file, segments it into normalized overlapping chunks
// with embeddings, and persists them in partitioned batches. Pages that fail
// extraction or are blank are skipped, as are pieces whose normalized text is
// empty; a failed partition write triggers a best-effort compensating cleanup
// of the document's chunks and blob.
func (s *DocumentService) Ingest(ctx context.Context, documentName string, data []byte) (*IngestResult, error) {
	documentName = strings.TrimSpace(documentName)
	if documentName == "" || len(data) == 0 {
		return nil, ErrInvalidInput
	}

	sourceURI, err := s.blob.Put(ctx, documentName, data)
	if err != nil {
		return nil, fmt.Errorf("store document blob failed: %w", err)
	}

	documentID := uuid.NewString()

	pages, err := s.extract(bytes.NewReader(data))
	if err != nil {
		s.cleanup(documentName)
		return nil, fmt.Errorf("extract document pages failed: %w", err)
	}

	now := time.Now().UTC()
	var all []model.Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pieces := textchunk.Split(page.Text, s.chunkSize, s.overlapSize)
		var kept, normalized []string
		for _, piece := range pieces {
			n := normalize.Text(piece, s.normOpts)
			if n == "" {
				// Symbol-only runs normalize to nothing; with no token
				// surface to embed or match, the piece is dropped.
				continue
			}
			kept = append(kept, piece)
			normalized = append(normalized, n)
		}
		if len(kept) == 0 {
			continue
		}

		embeddings, err := s.embedBatches(ctx, normalized)
		if err != nil {
			s.cleanup(documentName)
			return nil, err
		}

		for i := range kept {
			chunk := model.Chunk{
				ID:                uuid.NewString(),
				DocumentType:      model.DocumentTypePDF,
				DocumentID:        documentID,
				DocumentName:      documentName,
				PageIndex:         page.Number,
				ChunkIndex:        i + 1,
				Content:           kept[i],
				NormalizedContent: normalized[i],
				Source:            sourceURI,
				CreatedAt:         now,
			}
			chunk.SetEmbedding(embeddings[i])
			all = append(all, chunk)
		}
	}

	if err := s.chunks.CreateBatch(ctx, all); err != nil {
		// Partitions committed before the failure stay committed; compensate
		// by removing whatever landed, then the blob.
		if _, _, cleanupErr := s.chunks.DeleteByDocumentID(context.WithoutCancel(ctx), documentID); cleanupErr != nil {
			log.Printf("compensating chunk cleanup for document %s failed: %v", documentID, cleanupErr)
		}
		s.cleanup(documentName)
		return nil, err
	}

	s.publishEvent(ctx, model.DocumentEvent{
		EventType:    model.EventDocumentIngested,
		DocumentID:   documentID,
		DocumentName: documentName,
		ChunkCount:   len(all),
		OccurredAt:   now,
	})

	return &IngestResult{
		DocumentID:   documentID,
		DocumentName: documentName,
		ChunkCount:   len(all),
	}, nil
}

// List returns one row per stored PDF document.
func (s *DocumentService) List(ctx context.Context) ([]model.DocumentInfo, error) {
	return s.chunks.ListDocuments(ctx)
}

// Delete removes every chunk of the document and its blob. Deleting a missing
// document is not an error; found tells the caller which case occurred.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (string, bool, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return "", false, ErrInvalidInput
	}

	documentName, found, err := s.chunks.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	if err := s.blob.Delete(ctx, documentName); err != nil {
		return "", false, fmt.Errorf("delete document blob failed: %w", err)
	}

	s.publishEvent(ctx, model.DocumentEvent{
		EventType:    model.EventDocumentDeleted,
		DocumentID:   documentID,
		DocumentName: documentName,
		OccurredAt:   time.Now().UTC(),
	})

	return documentName, true, nil
}

func (s *DocumentService) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunk batch failed: %w", err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(texts))
	}
	return embeddings, nil
}

func (s *DocumentService) cleanup(documentName string) {
	if err := s.blob.Delete(context.Background(), documentName); err != nil {
		log.Printf("cleanup blob %q failed: %v", documentName, err)
	}
}

func (s *DocumentService) publishEvent(ctx context.Context, event model.DocumentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Printf("publish %s event for document %s failed: %v", event.EventType, event.DocumentID, err)
	}
}
