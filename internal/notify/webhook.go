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

// WebhookSender POSTs events to configured endpoints, the delivery channel
// the portal's notifications page consumes. Each event carries a dedup tag
// (the category) and the vibration pattern hint.
type WebhookSender struct {
	endpoints []string
	client    *http.Client
}

func NewWebhookSender(endpoints []string) *WebhookSender {
	return &WebhookSender{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookSender) Available() bool {
	return len(w.endpoints) > 0
}

type webhookPayload struct {
	Title     string   `json:"title"`
	Body      string   `json:"message"`
	Tag       Category `json:"tag"`
	Urgent    bool     `json:"requireInteraction"`
	Vibration []int    `json:"vibrate"`
}

func (w *WebhookSender) Send(ctx context.Context, ev Event) error {
	payload := webhookPayload{
		Title:     ev.Title,
		Body:      ev.Body,
		Tag:       ev.Category,
		Urgent:    ev.Urgent,
		Vibration: ev.Category.Vibration(),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for _, endpoint := range w.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			lastErr = fmt.Errorf("webhook status %d: %s", resp.StatusCode, b)
		}
		resp.Body.Close()
	}
	return lastErr
}
