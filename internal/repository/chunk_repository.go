package repository

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"chatdocs/internal/model"
)

// searchBatchSize bounds how many rows one search iteration pulls; ctx is
// checked between batches so a long scan stays cancellable.
const searchBatchSize = 500

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch writes chunks grouped by partition key, one transaction per
// partition: all chunks of a partition commit or none do. There is no
// atomicity across partitions; a failing partition aborts the call and its
// error names the partition, while earlier partitions stay committed.
func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, key := range partitionOrder(chunks) {
		group := partitionGroup(chunks, key)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&group).Error
		})
		if err != nil {
			return fmt.Errorf("write chunk batch for partition %s failed: %w", key, err)
		}
	}
	return nil
}

// ListDocuments returns one (documentId, documentName) row per PDF document.
func (r *ChunkRepository) ListDocuments(ctx context.Context) ([]model.DocumentInfo, error) {
	var docs []model.DocumentInfo
	err := r.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Distinct("document_id", "document_name").
		Where("document_type = ?", model.DocumentTypePDF).
		Scan(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// DeleteByDocumentID removes every chunk of the document, one delete
// transaction per partition. It returns the document's name and whether any
// chunk existed; a missing document is not an error.
func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID string) (string, bool, error) {
	var chunks []model.Chunk
	err := r.db.WithContext(ctx).
		Select("id", "document_type", "document_id", "document_name").
		Where("document_id = ?", documentID).
		Find(&chunks).Error
	if err != nil {
		return "", false, fmt.Errorf("query chunks for document %s failed: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return "", false, nil
	}

	documentName := chunks[0].DocumentName
	for _, key := range partitionOrder(chunks) {
		group := partitionGroup(chunks, key)
		ids := make([]string, len(group))
		for i := range group {
			ids[i] = group[i].ID
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Where("id IN ?", ids).Delete(&model.Chunk{}).Error
		})
		if err != nil {
			return "", false, fmt.Errorf("delete chunk batch for partition %s failed: %w", key, err)
		}
	}
	return documentName, true, nil
}

// SearchSimilar ranks all stored chunks against queryVector by cosine
// similarity, keeps the topK raw hits in descending order, and merges hits of
// the same page into one result. A merged result reports the sum of its
// members' similarities, but ordering uses each group's best member, so one
// highly relevant chunk outranks several weak ones on another page.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, queryVector []float32, topK int) ([]model.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	var scored []scoredChunk
	var batch []model.Chunk
	err := r.db.WithContext(ctx).FindInBatches(&batch, searchBatchSize, func(tx *gorm.DB, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range batch {
			scored = append(scored, scoredChunk{
				chunk: batch[i],
				score: cosineSimilarity(queryVector, batch[i].EmbeddingVector()),
			})
		}
		return nil
	}).Error
	if err != nil {
		return nil, fmt.Errorf("similarity scan failed: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	return mergeByPage(scored), nil
}

type scoredChunk struct {
	chunk model.Chunk
	score float64
}

// mergeByPage collapses ranked hits sharing a page index into one result per
// page. Content is space-joined in ranked order, the similarity field is the
// group sum, descriptive fields come from the group's first member, and the
// groups are ordered by their maximum member score. The sum-for-display /
// max-for-sort split is intentional; do not collapse it into one criterion.
func mergeByPage(ranked []scoredChunk) []model.SearchResult {
	type pageGroup struct {
		result model.SearchResult
		max    float64
	}

	var order []int
	groups := make(map[int]*pageGroup)
	for _, hit := range ranked {
		g, ok := groups[hit.chunk.PageIndex]
		if !ok {
			c := hit.chunk
			groups[hit.chunk.PageIndex] = &pageGroup{
				result: model.SearchResult{
					ID:                c.ID,
					DocumentType:      c.DocumentType,
					DocumentID:        c.DocumentID,
					DocumentName:      c.DocumentName,
					PageIndex:         c.PageIndex,
					ChunkIndex:        c.ChunkIndex,
					Content:           c.Content,
					NormalizedContent: c.NormalizedContent,
					Source:            c.Source,
					Similarity:        hit.score,
				},
				max: hit.score,
			}
			order = append(order, hit.chunk.PageIndex)
			continue
		}
		g.result.Content += " " + hit.chunk.Content
		g.result.NormalizedContent += " " + hit.chunk.NormalizedContent
		g.result.Similarity += hit.score
		if hit.score > g.max {
			g.max = hit.score
		}
	}

	ordered := make([]*pageGroup, 0, len(order))
	for _, page := range order {
		ordered = append(ordered, groups[page])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].max > ordered[j].max
	})

	merged := make([]model.SearchResult, len(ordered))
	for i := range ordered {
		merged[i] = ordered[i].result
	}
	return merged
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// partitionOrder returns partition keys in first-appearance order.
func partitionOrder(chunks []model.Chunk) []string {
	var order []string
	seen := make(map[string]bool)
	for i := range chunks {
		key := chunks[i].PartitionKey()
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	return order
}

func partitionGroup(chunks []model.Chunk, key string) []model.Chunk {
	var group []model.Chunk
	for i := range chunks {
		if chunks[i].PartitionKey() == key {
			group = append(group, chunks[i])
		}
	}
	return group
}
