package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
)

var _ ports.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier publica eventos de negocio como POST JSON a un endpoint
// configurado (integraciones externas: chat, BPM, etc.).
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier construye el notificador con el endpoint y timeout dados.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send publica la notificación. El caller decide si el fallo es fatal; en el
// motor del ledger nunca lo es.
func (w *WebhookNotifier) Send(ctx context.Context, n ports.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondió %d", resp.StatusCode)
	}
	return nil
}
