package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	llmMaxRetries   = 3
	llmInitialDelay = 1 * time.Second
)

// CompletionClient talks to an OpenAI-compatible chat completion endpoint.
type CompletionClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func NewCompletionClient(baseURL, apiKey, model string) *CompletionClient {
	return &CompletionClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete sends one system+user exchange and returns the assistant reply.
// Rate limits and server errors are retried with exponential backoff; other
// client errors abort immediately.
func (c *CompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return "", fmt.Errorf("llm client is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < llmMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * llmInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var envelope apiError
			if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
				lastErr = fmt.Errorf("completion API error (%d): %s", resp.StatusCode, envelope.Error.Message)
			} else {
				lastErr = fmt.Errorf("completion API error (%d): %s", resp.StatusCode, string(respBody))
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned")
		}
		return chatResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", llmMaxRetries, lastErr)
}
