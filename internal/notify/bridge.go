package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BridgeSender posts win notifications to the host bridge webhook, which
// shows the platform alert to the viewer.
type BridgeSender struct {
	url    string
	client *http.Client
}

// NewBridgeSender creates a BridgeSender with a 10-second client timeout.
func NewBridgeSender(url string) *BridgeSender {
	return &BridgeSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the notification as JSON.
func (b *BridgeSender) Send(ctx context.Context, n Notification) error {
	payload := struct {
		Type string `json:"type"`
		Notification
	}{Type: "win", Notification: n}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bridge: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bridge: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bridge: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Name returns the sender identifier.
func (b *BridgeSender) Name() string {
	return "bridge"
}
