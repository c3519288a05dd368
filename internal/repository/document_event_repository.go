package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chatdocs/internal/model"
)

type DocumentEventRepository struct {
	db *gorm.DB
}

func NewDocumentEventRepository(db *gorm.DB) *DocumentEventRepository {
	return &DocumentEventRepository{db: db}
}

func (r *DocumentEventRepository) Create(event *model.DocumentEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create document event failed: %w", err)
	}
	return nil
}

// ListByDocumentID returns the lifecycle history of one document, oldest first.
func (r *DocumentEventRepository) ListByDocumentID(documentID string) ([]model.DocumentEvent, error) {
	var events []model.DocumentEvent
	err := r.db.
		Where("document_id = ?", documentID).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list document events failed: %w", err)
	}
	return events, nil
}
