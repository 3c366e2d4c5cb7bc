package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stokku/inventory-service/config"
)

// WebhookNotifier POSTs notifications to an operator-configured endpoint.
type WebhookNotifier struct {
	client *resty.Client
}

func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	client := resty.New()
	client.
		SetBaseURL(cfg.URL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	return &WebhookNotifier{client: client}
}

func (n *WebhookNotifier) Notify(ctx context.Context, notification Notification) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(notification).
		Post("")
	if err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
