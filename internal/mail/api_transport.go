package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"surveyhub/internal/logger"
)

// ErrTransportUnavailable marks a transport that cannot attempt delivery at
// all, typically because its credentials are not configured.
var ErrTransportUnavailable = errors.New("transport unavailable")

const apiSendTimeout = 30 * time.Second

// APITransport delivers mail through a transactional-email HTTP API.
type APITransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

type apiSendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type apiSendResponse struct {
	MessageID string `json:"message_id"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func NewAPITransport(baseURL, apiKey string) *APITransport {
	return &APITransport{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: apiSendTimeout},
		log:     logger.New("mail").File("api_transport"),
	}
}

func (t *APITransport) Send(ctx context.Context, msg Message) (string, error) {
	log := t.log.Function("Send")

	if t.apiKey == "" || t.baseURL == "" {
		return "", ErrTransportUnavailable
	}

	body, err := json.Marshal(apiSendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", log.Err("failed to marshal send request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", log.Err("failed to create request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", log.Err("mail API request failed", err, "to", msg.To)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", log.Err("failed to read mail API response", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("mail API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("mail API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var sendResp apiSendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", log.Err("failed to decode mail API response", err)
	}

	return sendResp.MessageID, nil
}
