// Package preparation содержит HTTP-клиент сервиса приготовления.
package preparation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/version"
)

const (
	ordersPath     = "/ms-preparation/api/v1/orders"
	defaultTimeout = 5 * time.Second
	// maxErrorBody ограничивает тело ответа, попадающее в текст ошибки.
	maxErrorBody = 512
)

// ErrBaseURLRequired возвращается, если адрес сервиса приготовления не задан.
var ErrBaseURLRequired = errors.New("preparation base url is required")

// Client отправляет уведомления о статусе заказа сервису приготовления.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient создаёт клиент. timeout <= 0 заменяется значением по умолчанию.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   baseURL + ordersPath,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Endpoint возвращает полный адрес, на который уходят уведомления.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Publish отправляет payload сообщения outbox как JSON. Любой ответ вне 2xx считается ошибкой.
func (c *Client) Publish(ctx context.Context, event domain.OutboxMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(event.Payload))
	if err != nil {
		return fmt.Errorf("build preparation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Idempotency-Key", event.ID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send preparation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("preparation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ domain.OutboxPublisher = (*Client)(nil)
