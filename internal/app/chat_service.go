package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"chatdocs/internal/ai"
	"chatdocs/internal/model"
	"chatdocs/internal/normalize"
)

const (
	defaultTopK           = 5
	answerTemperature     = 0.7
	answerMaxOutputTokens = 800
)

var ErrEmptyQuery = errors.New("user query cannot be empty")

// ChatStreamer is the streaming model collaborator.
type ChatStreamer interface {
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions, onFragment func(string) error) error
}

// EmbeddingCache memoizes query embeddings; cache trouble is never fatal.
type EmbeddingCache interface {
	Get(ctx context.Context, normalizedQuery string) ([]float32, bool, error)
	Set(ctx context.Context, normalizedQuery string, vec []float32) error
}

// ChatService retrieves grounding context for a question and streams a model
// answer constrained to it.
type ChatService struct {
	chunks   ChunkStore
	embedder Embedder
	llm      ChatStreamer
	cache    EmbeddingCache
	topK     int
	normOpts normalize.Options
}

func NewChatService(chunks ChunkStore, embedder Embedder, llm ChatStreamer, cache EmbeddingCache, topK int) *ChatService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ChatService{
		chunks:   chunks,
		embedder: embedder,
		llm:      llm,
		cache:    cache,
		topK:     topK,
		normOpts: normalize.DefaultOptions(),
	}
}

// Retrieve normalizes and embeds the query, then returns the store's merged,
// ranked page results unchanged. No re-ranking happens here.
func (s *ChatService) Retrieve(ctx context.Context, rawQuery string) ([]model.SearchResult, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ErrEmptyQuery
	}

	normalized := normalize.Text(rawQuery, s.normOpts)

	queryVector, err := s.queryEmbedding(ctx, normalized)
	if err != nil {
		return nil, err
	}

	results, err := s.chunks.SearchSimilar(ctx, queryVector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	return results, nil
}

// StreamAnswer builds the grounding prompt from rankedContext and forwards
// every model fragment to onFragment as it arrives. It is a pass-through
// stream: nothing is buffered beyond the current fragment, cancellation is
// propagated, and the model call is never retried.
func (s *ChatService) StreamAnswer(ctx context.Context, rawQuery string, rankedContext []model.SearchResult, onFragment func(string) error) error {
	messages := []ai.ChatMessage{
		{Role: "system", Content: groundingSystemPrompt},
		{Role: "user", Content: buildUserMessage(rawQuery, rankedContext)},
	}
	opts := ai.ChatOptions{
		Temperature:     answerTemperature,
		MaxOutputTokens: answerMaxOutputTokens,
	}
	return s.llm.StreamComplete(ctx, messages, opts, onFragment)
}

func (s *ChatService) queryEmbedding(ctx context.Context, normalizedQuery string) ([]float32, error) {
	if s.cache != nil {
		vec, ok, err := s.cache.Get(ctx, normalizedQuery)
		if err != nil {
			log.Printf("embedding cache read failed: %v", err)
		} else if ok {
			return vec, nil
		}
	}

	vec, err := s.embedder.Embed(ctx, normalizedQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, normalizedQuery, vec); err != nil {
			log.Printf("embedding cache write failed: %v", err)
		}
	}
	return vec, nil
}

const groundingSystemPrompt = `You are a technical assistant that answers ONLY using the provided documents. Follow these strict rules:

- Provide information EXACTLY as stated in the documents.
- If the answer is not in the documents, reply: "The provided documents do not contain this information."
- Do not add introductions, summaries, or conclusions.
- If asked to summarize, generate a structured summary using the key points from the documents.
- Do not use titles or headings.
- Do not include general knowledge outside the provided documents.
- Use concise sentences and bullet points (-) only when listing multiple items.
- Always cite the source in the format: [Document: filename, Page: X, Link: URL]
- If the source documents contain conflicting information, acknowledge this and cite both sources.`

func buildUserMessage(query string, rankedContext []model.SearchResult) string {
	formatted := make([]string, len(rankedContext))
	for i, r := range rankedContext {
		source := r.Source
		if source == "" {
			source = "N/A"
		}
		formatted[i] = fmt.Sprintf(`[Document Information]
Document Name: %s
Page Number: %d
Source: %s
Relevance Score: %.2f

Content:
%s`, r.DocumentName, r.PageIndex, source, r.Similarity, r.Content)
	}

	return fmt.Sprintf(`Use ONLY the following document excerpts to answer the question.

Documents:
%s

Question: %s

Respond directly with the relevant information, following the provided rules.`,
		strings.Join(formatted, "\n\n"), query)
}
