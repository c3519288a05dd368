package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdocs/internal/app"
	"chatdocs/internal/model"
	"chatdocs/internal/transport/http/response"
)

// Stream framing: every fragment is followed by a blank line, and the stream
// ends with exactly one sentinel the client splits on.
const (
	fragmentSeparator = "\n\n"
	doneSentinel      = "[DONE]\n\n"
	cancelledSentinel = "[CANCELLED]\n\n"
)

// ChatBackend is what the chat endpoint needs from the service layer.
type ChatBackend interface {
	Retrieve(ctx context.Context, rawQuery string) ([]model.SearchResult, error)
	StreamAnswer(ctx context.Context, rawQuery string, rankedContext []model.SearchResult, onFragment func(string) error) error
}

type ChatHandler struct {
	chat ChatBackend
}

type ChatRequest struct {
	UserQuery string `json:"userQuery"`
}

func NewChatHandler(chat ChatBackend) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat retrieves grounding context for the query and streams the model answer
// as an unbuffered chunked text response. Each fragment is flushed before the
// next is requested; the stream ends with [DONE] on success and [CANCELLED]
// when streaming aborts after the first byte has been written.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := c.Request.Context()

	results, err := h.chat.Retrieve(ctx, req.UserQuery)
	if err != nil {
		if errors.Is(err, app.ErrEmptyQuery) {
			response.Error(c, http.StatusBadRequest, "User Query cannot be empty")
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "streaming not supported")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)

	started := false
	streamErr := h.chat.StreamAnswer(ctx, req.UserQuery, results, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if _, err := c.Writer.WriteString(fragment + fragmentSeparator); err != nil {
			return err
		}
		flusher.Flush()
		started = true
		return nil
	})
	if streamErr != nil {
		// Headers are gone; the only signal left is an in-band sentinel.
		if !started && !errors.Is(streamErr, context.Canceled) {
			response.Error(c, http.StatusInternalServerError, streamErr.Error())
			return
		}
		if _, err := c.Writer.WriteString(cancelledSentinel); err == nil {
			flusher.Flush()
		}
		return
	}

	if _, err := c.Writer.WriteString(doneSentinel); err == nil {
		flusher.Flush()
	}
}
