package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdocs/internal/model"
	"chatdocs/internal/transport/http/response"
)

// EventBackend reads the persisted document lifecycle audit trail.
type EventBackend interface {
	ListByDocumentID(documentID string) ([]model.DocumentEvent, error)
}

type EventHandler struct {
	events EventBackend
}

func NewEventHandler(events EventBackend) *EventHandler {
	return &EventHandler{events: events}
}

// ListByDocument returns the lifecycle history of one document, oldest first.
// The audit rows are written asynchronously, so a freshly ingested document may
// briefly report no events.
func (h *EventHandler) ListByDocument(c *gin.Context) {
	events, err := h.events.ListByDocumentID(c.Param("documentId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []model.DocumentEvent{}
	}
	c.JSON(http.StatusOK, events)
}
