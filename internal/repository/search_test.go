package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdocs/internal/model"
)

func hit(id string, page int, content string, score float64) scoredChunk {
	return scoredChunk{
		chunk: model.Chunk{
			ID:                id,
			DocumentType:      model.DocumentTypePDF,
			DocumentID:        "doc-1",
			DocumentName:      "handbook.pdf",
			PageIndex:         page,
			ChunkIndex:        1,
			Content:           content,
			NormalizedContent: content,
			Source:            "http://blob/handbook.pdf",
		},
		score: score,
	}
}

func TestMergeByPageSumsButSortsByMax(t *testing.T) {
	// Page 7 has a single strong hit, page 3 has two weak ones whose sum is
	// larger. The strong page must still rank first.
	ranked := []scoredChunk{
		hit("a", 7, "strong", 0.9),
		hit("b", 3, "weak one", 0.5),
		hit("c", 3, "weak two", 0.5),
	}

	merged := mergeByPage(ranked)
	require.Len(t, merged, 2)

	assert.Equal(t, 7, merged[0].PageIndex)
	assert.InDelta(t, 0.9, merged[0].Similarity, 1e-9)

	assert.Equal(t, 3, merged[1].PageIndex)
	assert.InDelta(t, 1.0, merged[1].Similarity, 1e-9)
	assert.Equal(t, "weak one weak two", merged[1].Content)
}

func TestMergeByPageJoinsInRankedOrder(t *testing.T) {
	ranked := []scoredChunk{
		hit("a", 2, "first", 0.8),
		hit("b", 2, "second", 0.6),
		hit("c", 2, "third", 0.4),
	}

	merged := mergeByPage(ranked)
	require.Len(t, merged, 1)
	assert.Equal(t, "first second third", merged[0].Content)
	assert.Equal(t, "first second third", merged[0].NormalizedContent)
	assert.InDelta(t, 1.8, merged[0].Similarity, 1e-9)

	// Descriptive fields come from the group's first member.
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, 1, merged[0].ChunkIndex)
	assert.Equal(t, "handbook.pdf", merged[0].DocumentName)
}

func TestMergeByPageEmpty(t *testing.T) {
	assert.Empty(t, mergeByPage(nil))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 5}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-3, 0}), 1e-9)

	assert.Zero(t, cosineSimilarity(nil, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}

func TestPartitionGrouping(t *testing.T) {
	chunks := []model.Chunk{
		{ID: "1", DocumentType: "pdf", DocumentID: "aa11"},
		{ID: "2", DocumentType: "pdf", DocumentID: "bb22"},
		{ID: "3", DocumentType: "pdf", DocumentID: "aa33"},
		{ID: "4", DocumentType: "wiki", DocumentID: "aa44"},
	}

	order := partitionOrder(chunks)
	assert.Equal(t, []string{"pdf_aa", "pdf_bb", "wiki_aa"}, order)

	group := partitionGroup(chunks, "pdf_aa")
	require.Len(t, group, 2)
	assert.Equal(t, "1", group[0].ID)
	assert.Equal(t, "3", group[1].ID)
}
