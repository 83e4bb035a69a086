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
	embeddingBatchSize    = 512
	embeddingMaxRetries   = 3
	embeddingInitialDelay = 1 * time.Second
)

// EmbeddingClient talks to an OpenAI-compatible embeddings endpoint.
type EmbeddingClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func NewEmbeddingClient(baseURL, apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// EmbedTexts embeds every text, batching as needed.
func (c *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	if len(texts) <= embeddingBatchSize {
		return c.embed(ctx, texts)
	}

	var all [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embed(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d failed: %w", i, end, err)
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (c *EmbeddingClient) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return nil, fmt.Errorf("embedding client is not configured")
	}

	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < embeddingMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * embeddingInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
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
				lastErr = fmt.Errorf("embedding API error (%d): %s", resp.StatusCode, envelope.Error.Message)
			} else {
				lastErr = fmt.Errorf("embedding API error (%d): %s", resp.StatusCode, string(respBody))
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		var embedResp embeddingResponse
		if err := json.Unmarshal(respBody, &embedResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if len(embedResp.Data) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embedResp.Data))
		}

		embeddings := make([][]float32, len(embedResp.Data))
		for _, d := range embedResp.Data {
			if d.Index < 0 || d.Index >= len(embeddings) {
				return nil, fmt.Errorf("invalid embedding index: %d", d.Index)
			}
			embeddings[d.Index] = d.Embedding
		}
		return embeddings, nil
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embeddingMaxRetries, lastErr)
}
