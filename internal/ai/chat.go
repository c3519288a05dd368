package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatConfig holds API settings for chat completion (OpenAI-compatible).
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// ChatOptions are per-call sampling parameters.
type ChatOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// ChatClient streams completions from an OpenAI-compatible endpoint.
type ChatClient struct {
	cfg        ChatConfig
	httpClient *http.Client
}

func NewChatClient(cfg ChatConfig) *ChatClient {
	return &ChatClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// StreamComplete runs one streaming completion and hands every non-empty text
// fragment to onFragment as it arrives. It buffers nothing beyond the current
// fragment. Cancelling ctx aborts the request and the iteration; a non-nil
// error from onFragment stops the stream. The call is never retried.
func (c *ChatClient) StreamComplete(
	ctx context.Context,
	messages []ChatMessage,
	opts ChatOptions,
	onFragment func(fragment string) error,
) error {
	reqBody := map[string]any{
		"model":    c.cfg.Model,
		"messages": messages,
		"stream":   true,
	}
	if opts.Temperature > 0 {
		reqBody["temperature"] = opts.Temperature
	}
	if opts.MaxOutputTokens > 0 {
		reqBody["max_tokens"] = opts.MaxOutputTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal llm stream request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build llm stream request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("llm stream status %d: %s", resp.StatusCode, string(raw))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		text := chunk.Choices[0].Delta.Content
		if text == "" {
			continue
		}

		if err := onFragment(text); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("scan llm stream failed: %w", err)
	}
	return nil
}
