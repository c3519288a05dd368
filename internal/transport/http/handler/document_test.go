package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdocs/internal/app"
	"chatdocs/internal/model"
)

type fakeDocumentBackend struct {
	ingestErr  error
	listErr    error
	deleteErr  error
	docs       []model.DocumentInfo
	lastName   string
	lastData   []byte
	deletedIDs []string
}

func (f *fakeDocumentBackend) Ingest(_ context.Context, documentName string, data []byte) (*app.IngestResult, error) {
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	f.lastName = documentName
	f.lastData = data
	return &app.IngestResult{DocumentID: "doc-1", DocumentName: documentName}, nil
}

func (f *fakeDocumentBackend) List(context.Context) ([]model.DocumentInfo, error) {
	return f.docs, f.listErr
}

func (f *fakeDocumentBackend) Delete(_ context.Context, documentID string) (string, bool, error) {
	if f.deleteErr != nil {
		return "", false, f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, documentID)
	if documentID == "missing" {
		return "", false, nil
	}
	return "handbook.pdf", true, nil
}

func documentRouter(backend DocumentBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDocumentHandler(backend)
	r.POST("/documents", h.Upload)
	r.GET("/documents", h.List)
	r.DELETE("/documents/:documentId", h.Delete)
	return r
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadSuccess(t *testing.T) {
	backend := &fakeDocumentBackend{}
	body, contentType := multipartUpload(t, "handbook.pdf", []byte("%PDF-1.4 content"))

	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	documentRouter(backend).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "doc-1", resp["documentId"])
	assert.Equal(t, "handbook.pdf", resp["documentName"])
	assert.Equal(t, "File uploaded successfully.", resp["message"])

	assert.Equal(t, "handbook.pdf", backend.lastName)
	assert.Equal(t, []byte("%PDF-1.4 content"), backend.lastData)
}

func TestUploadMissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	documentRouter(&fakeDocumentBackend{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing file")
}

func TestUploadInvalidInput(t *testing.T) {
	backend := &fakeDocumentBackend{ingestErr: fmt.Errorf("%w: only PDF files are supported", app.ErrInvalidInput)}
	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))

	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	documentRouter(backend).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only PDF files are supported")
}

func TestUploadBackendFailure(t *testing.T) {
	backend := &fakeDocumentBackend{ingestErr: errors.New("write chunk batch for partition pdf_ab failed: db down")}
	body, contentType := multipartUpload(t, "handbook.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	documentRouter(backend).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestListDocuments(t *testing.T) {
	backend := &fakeDocumentBackend{docs: []model.DocumentInfo{
		{DocumentID: "d1", DocumentName: "a.pdf"},
		{DocumentID: "d2", DocumentName: "b.pdf"},
	}}

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	documentRouter(backend).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var docs []model.DocumentInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Equal(t, backend.docs, docs)
}

func TestListDocumentsEmptyIsAnArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	documentRouter(&fakeDocumentBackend{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestDeleteFound(t *testing.T) {
	backend := &fakeDocumentBackend{}
	req := httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	documentRouter(backend).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["found"])
	assert.Equal(t, "handbook.pdf", resp["documentName"])
	assert.Equal(t, []string{"doc-1"}, backend.deletedIDs)
}

func TestDeleteMissingIsIdempotent(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/documents/missing", nil)
	rec := httptest.NewRecorder()
	documentRouter(&fakeDocumentBackend{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["found"])
	assert.NotContains(t, resp, "documentName")
}
