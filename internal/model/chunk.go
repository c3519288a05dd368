package model

import (
	"encoding/json"
	"time"
)

const (
	DocumentTypePDF  = "pdf"
	DocumentTypeWiki = "wiki"
	DocumentTypeLoop = "loop"
)

// Chunk is the atomic retrievable unit: one slice of one page of one document,
// with its embedding. Chunks are written in batch at ingestion, never updated,
// and deleted in batch when their document is deleted.
// Embedding and Tags are stored as JSON text for portability.
type Chunk struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	DocumentType      string    `gorm:"size:16;not null;index" json:"documentType"`
	DocumentID        string    `gorm:"size:36;not null;index" json:"documentId"`
	DocumentName      string    `gorm:"size:256" json:"documentName"`
	PageIndex         int       `gorm:"not null" json:"pageIndex"`
	ChunkIndex        int       `gorm:"not null" json:"chunkIndex"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	NormalizedContent string    `gorm:"type:text;not null" json:"normalizedContent"`
	Embedding         string    `gorm:"type:mediumtext" json:"-"` // JSON array of float32
	Tags              string    `gorm:"type:text" json:"-"`       // JSON array of string
	Source            string    `gorm:"size:1024" json:"source,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PartitionKey groups chunks for transactional batching and storage locality.
// It is a pure function of DocumentType and DocumentID and is never stored.
func (c *Chunk) PartitionKey() string {
	id := c.DocumentID
	if len(id) > 2 {
		id = id[:2]
	}
	return c.DocumentType + "_" + id
}

// EmbeddingVector returns the parsed embedding slice; nil on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// TagList returns the parsed tags; nil when no tags are set.
func (c *Chunk) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	var v []string
	_ = json.Unmarshal([]byte(c.Tags), &v)
	return v
}

// SetTags stores the tags as JSON.
func (c *Chunk) SetTags(tags []string) {
	if len(tags) == 0 {
		c.Tags = ""
		return
	}
	b, _ := json.Marshal(tags)
	c.Tags = string(b)
}

// DocumentInfo is one row of the document listing.
type DocumentInfo struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
}

// SearchResult is a transient query-time record: chunk fields plus a similarity
// score. After page merging, Similarity holds the sum of the merged group's
// member scores while ordering is by the group's best member.
type SearchResult struct {
	ID                string  `json:"id"`
	DocumentType      string  `json:"documentType"`
	DocumentID        string  `json:"documentId"`
	DocumentName      string  `json:"documentName"`
	PageIndex         int     `json:"pageIndex"`
	ChunkIndex        int     `json:"chunkIndex"`
	Content           string  `json:"content"`
	NormalizedContent string  `json:"normalizedContent"`
	Source            string  `json:"source,omitempty"`
	Similarity        float64 `json:"similarity"`
}
