package domain

import (
	"context"
	"time"
)

// StatusNotification: уведомление сервиса приготовления о смене статуса заказа.
type StatusNotification struct {
	OrderID   int64       `json:"idOrder"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PreparationNotifier передаёт статус заказа сервису приготовления.
// Реализации не должны блокировать вызывающего дольше локальной записи.
type PreparationNotifier interface {
	NotifyStatus(ctx context.Context, notification StatusNotification) error
}

// OutboxPublisher публикует события из outbox; должен быть идемпотентным.
type OutboxPublisher interface {
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

const (
	// AggregateTypeOrder: тип агрегата для сообщений outbox по заказам.
	AggregateTypeOrder = "order"
	// EventTypeOrderStatusChanged: событие смены статуса заказа.
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)
