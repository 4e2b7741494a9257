package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// Notifier кладёт уведомления о статусе заказа в outbox; доставку выполняет Worker.
type Notifier struct {
	repo domain.OutboxRepository
}

// NewNotifier создаёт notifier поверх outbox-репозитория.
func NewNotifier(repo domain.OutboxRepository) *Notifier {
	return &Notifier{repo: repo}
}

// NotifyStatus сериализует уведомление и ставит его в очередь outbox.
func (n *Notifier) NotifyStatus(ctx context.Context, notification domain.StatusNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal status notification: %w", err)
	}

	if _, err := n.repo.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   strconv.FormatInt(notification.OrderID, 10),
		EventType:     domain.EventTypeOrderStatusChanged,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("enqueue status notification for order %d: %w", notification.OrderID, err)
	}
	return nil
}

var _ domain.PreparationNotifier = (*Notifier)(nil)
