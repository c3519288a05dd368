package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdocs/internal/app"
	"chatdocs/internal/model"
	"chatdocs/internal/transport/http/response"
)

const maxUploadSize = 32 << 20 // 32 MB

// DocumentBackend is what the document endpoints need from the service layer.
type DocumentBackend interface {
	Ingest(ctx context.Context, documentName string, data []byte) (*app.IngestResult, error)
	List(ctx context.Context) ([]model.DocumentInfo, error)
	Delete(ctx context.Context, documentID string) (string, bool, error)
}

type DocumentHandler struct {
	documents DocumentBackend
}

func NewDocumentHandler(documents DocumentBackend) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload ingests one multipart file. Blob, embedding and store failures all
// surface the same way: a 500 problem carrying the raw error message.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file: "+err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file: "+err.Error())
		return
	}

	result, err := h.documents.Ingest(c.Request.Context(), file.Filename, data)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId":   result.DocumentID,
		"documentName": result.DocumentName,
		"message":      "File uploaded successfully.",
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []model.DocumentInfo{}
	}
	c.JSON(http.StatusOK, docs)
}

// Delete is idempotent: a missing document still yields 200, with found=false
// so callers that care can tell the difference.
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentId")

	documentName, found, err := h.documents.Delete(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid document id")
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{
			"found":   false,
			"message": "Document not found; nothing deleted.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"found":        true,
		"documentName": documentName,
		"message":      "Document deleted successfully.",
	})
}
