package model

import "time"

const (
	EventDocumentIngested = "document.ingested"
	EventDocumentDeleted  = "document.deleted"
)

// DocumentEvent is an audit record of a document lifecycle change, persisted
// asynchronously by the event worker.
type DocumentEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventType    string    `gorm:"size:32;not null;index" json:"eventType"`
	DocumentID   string    `gorm:"size:36;not null;index" json:"documentId"`
	DocumentName string    `gorm:"size:256" json:"documentName"`
	ChunkCount   int       `json:"chunkCount"`
	OccurredAt   time.Time `json:"occurredAt"`
	CreatedAt    time.Time `json:"createdAt"`
}
