// Package sms delivers transactional text messages through the platform's
// HTTP SMS gateway. Delivery is best effort: callers treat a failed dispatch
// as a logged event, never as a request failure.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Dispatcher interface {
	Send(ctx context.Context, phoneNumber, countryCode, message string) DispatchResult
}

// DispatchResult reports the outcome of a single send attempt. The MessageID
// is gateway-assigned on success.
type DispatchResult struct {
	Success   bool
	MessageID string
	Err       error
}

type gatewayRequest struct {
	To       string `json:"to"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
	RefID    string `json:"refId"`
}

type gatewayResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

type GatewayClient struct {
	baseURL    string
	apiKey     string
	senderID   string
	httpClient *http.Client
	retryCount int
}

func NewGatewayClient(baseURL, apiKey, senderID string, timeout time.Duration, retryCount int) *GatewayClient {
	return &GatewayClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryCount: retryCount,
	}
}

func (c *GatewayClient) Send(ctx context.Context, phoneNumber, countryCode, message string) DispatchResult {
	refID := uuid.NewString()
	var lastErr error

	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return DispatchResult{Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		messageID, err := c.sendOnce(ctx, phoneNumber, countryCode, message, refID)
		if err == nil {
			return DispatchResult{Success: true, MessageID: messageID}
		}
		lastErr = err
	}

	return DispatchResult{Err: lastErr}
}

func (c *GatewayClient) sendOnce(ctx context.Context, phoneNumber, countryCode, message, refID string) (string, error) {
	payload := gatewayRequest{
		To:       countryCode + phoneNumber,
		SenderID: c.senderID,
		Message:  message,
		RefID:    refID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var decoded gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode sms gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !decoded.Success {
		return "", fmt.Errorf("sms gateway rejected message: status=%d error=%s", resp.StatusCode, decoded.Error)
	}

	return decoded.MessageID, nil
}
