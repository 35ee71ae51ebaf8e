// Package llm provides a minimal client for OpenAI-compatible
// chat-completions endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.openai.com"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client abstracts the completion call so pipelines stay testable.
type Client interface {
	Complete(ctx context.Context, model string, messages []Message) (content string, requestID string, err error)
}

// HTTPClient calls the chat-completions endpoint over plain HTTP.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(apiKey, baseURL string) *HTTPClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Complete sends one request and returns the reply text verbatim, empty
// replies included; callers decide what an unusable reply means.
// Non-2xx status, missing choices and refusals are errors.
func (c *HTTPClient) Complete(ctx context.Context, model string, messages []Message) (string, string, error) {
	requestBody := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": 0.1,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.Header.Get("x-request-id"), fmt.Errorf("read response: %w", err)
	}

	requestID := resp.Header.Get("x-request-id")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", requestID, fmt.Errorf("chat completions status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", requestID, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", requestID, fmt.Errorf("empty choices")
	}

	choice := parsed.Choices[0].Message
	if strings.TrimSpace(choice.Refusal) != "" {
		return "", requestID, fmt.Errorf("model refusal: %s", choice.Refusal)
	}

	return choice.Content, requestID, nil
}
