// Package notify posts fire-and-forget event notifications to an optional
// webhook. Failures are logged and dropped; the caller never blocks on
// delivery.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// Webhook delivers notifications to a configured HTTP endpoint. A capped
// number of deliveries run at once; excess notifications are dropped.
type Webhook struct {
	url      string
	client   *http.Client
	bulkhead *resilience.Bulkhead
	logger   *zap.Logger
}

// NewWebhook builds a notifier for the given URL. An empty URL returns nil,
// which the services treat as notifications disabled.
func NewWebhook(url string, timeout time.Duration, maxConcurrent int, logger *zap.Logger) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		bulkhead: resilience.NewBulkhead(maxConcurrent),
		logger:   logger,
	}
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	At    string `json:"at"`
}

// Notify posts the event without waiting for the response. Delivery is best
// effort: when the concurrency cap is reached the event is dropped.
func (w *Webhook) Notify(ctx context.Context, title, body string) {
	if !w.bulkhead.TryAcquire() {
		w.logger.Debug("notification dropped, bulkhead full", zap.String("title", title))
		return
	}

	go func() {
		defer w.bulkhead.Release()
		if err := w.post(ctx, title, body); err != nil {
			w.logger.Debug("notification delivery failed",
				zap.String("title", title),
				zap.Error(err))
		}
	}()
}

func (w *Webhook) post(ctx context.Context, title, body string) error {
	raw, err := json.Marshal(payload{
		Title: title,
		Body:  body,
		At:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
