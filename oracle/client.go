// Package oracle carries the outbound transport toward the external
// randomness provider. The inbound leg is the gate fulfill RPC route.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Client notifies the provider endpoint of each outstanding entropy request.
// With no endpoint configured it degrades to log-only operation and the
// provider is expected to poll the gate status route instead.
type Client struct {
	endpoint string
	http     *http.Client
	log      *slog.Logger
}

// New constructs a provider client. An empty endpoint is valid.
func New(endpoint string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: requestTimeout},
		log:      log,
	}
}

type wordRequest struct {
	RequestID uint64 `json:"requestId"`
	DayIndex  uint64 `json:"dayIndex"`
}

// RequestWord implements the gate oracle contract.
func (c *Client) RequestWord(requestID uint64, dayIndex uint64) error {
	if c.endpoint == "" {
		c.log.Info("entropy request pending", "request_id", requestID, "day_index", dayIndex)
		return nil
	}

	body, err := json.Marshal(wordRequest{RequestID: requestID, DayIndex: dayIndex})
	if err != nil {
		return fmt.Errorf("encode entropy request: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build entropy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deliver entropy request %d: %w", requestID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("entropy provider rejected request %d: status %d", requestID, resp.StatusCode)
	}
	c.log.Info("entropy request delivered", "request_id", requestID, "day_index", dayIndex)
	return nil
}
