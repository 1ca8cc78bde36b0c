package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gunnas32/QR-Stock/internal/model"
)

// WebhookClient delivers low-stock alerts as JSON POSTs to an external
// endpoint (chat bridges, ops dashboards). The intent is the request body
// verbatim; any 2xx acknowledges delivery.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WebhookClient) Name() string { return "webhook" }

func (c *WebhookClient) Notify(ctx context.Context, intent model.AlertIntent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("webhook: marshal intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
