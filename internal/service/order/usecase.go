// Package order реализует создание заказов и переходы их статусов.
package order

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/metrics"
)

// ItemResolver разрешает строки заказа в снимки позиций меню.
type ItemResolver interface {
	GetAllByIDs(ctx context.Context, lines []domain.OrderLine) ([]domain.Item, error)
}

// CreateOrderInput: запрос на создание заказа.
type CreateOrderInput struct {
	// ClientID пустой для анонимного заказа.
	ClientID *int64
	Lines    []domain.OrderLine
}

// Option настраивает UseCase.
type Option func(*UseCase)

// WithClock подменяет источник времени.
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

// WithMetrics включает метрики заказов.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(uc *UseCase) {
		uc.metrics = m
	}
}

// UseCase управляет жизненным циклом заказа.
type UseCase struct {
	orders   dao.OrderRepository
	items    ItemResolver
	notifier domain.PreparationNotifier
	metrics  *metrics.OrderMetrics
	clock    func() time.Time
	logger   *log.Entry
}

// NewUseCase создаёт сценарии заказов. notifier может быть nil: тогда уведомления не отправляются.
func NewUseCase(
	orders dao.OrderRepository,
	items ItemResolver,
	notifier domain.PreparationNotifier,
	logger *log.Entry,
	options ...Option,
) *UseCase {
	if logger == nil {
		logger = log.WithField("component", "order-usecase")
	}
	uc := &UseCase{
		orders:   orders,
		items:    items,
		notifier: notifier,
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	for _, option := range options {
		option(uc)
	}
	return uc
}

// Create проверяет строки, разрешает позиции, считает сумму и сохраняет заказ со статусом Created.
func (uc *UseCase) Create(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	start := time.Now()

	if len(input.Lines) == 0 {
		return domain.Order{}, domain.ErrItemsRequired
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("item %d: %w", line.ItemID, domain.ErrItemQtyInvalid)
		}
	}

	items, err := uc.items.GetAllByIDs(ctx, input.Lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resolve order items: %w", err)
	}

	now := uc.clock()
	order := domain.Order{
		Status:    domain.OrderStatusCreated,
		ClientID:  input.ClientID,
		Total:     domain.ComputeTotal(items),
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("order invariants: %w", errs[0])
	}

	saved, err := uc.orders.Save(ctx, dao.OrderFromEntity(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	created := saved.ToEntity()

	uc.metrics.RecordOrderCreated(time.Since(start))
	uc.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"lines":    len(created.Items),
		"total":    created.Total.StringFixed(2),
	}).Info("order created")

	uc.notify(ctx, created.ID, created.Status)
	return created, nil
}

// FindByParams возвращает заказы по фильтру в порядке создания.
func (uc *UseCase) FindByParams(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	records, err := uc.orders.FindByParams(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return dao.OrdersToEntities(records), nil
}

// GetByID возвращает заказ с позициями или ErrOrderNotFound.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (domain.Order, error) {
	record, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return record.ToEntity(), nil
}

// Update переводит заказ в next. Допустим только следующий статус жизненного цикла.
func (uc *UseCase) Update(ctx context.Context, current domain.Order, next domain.OrderStatus) (domain.Order, error) {
	if err := current.Status.CanTransitionTo(next); err != nil {
		return domain.Order{}, err
	}

	now := uc.clock()
	if err := uc.orders.UpdateStatus(ctx, current.ID, string(next), now); err != nil {
		return domain.Order{}, fmt.Errorf("update order %d status: %w", current.ID, err)
	}

	updated := current
	updated.Status = next
	updated.UpdatedAt = now

	uc.metrics.RecordStatusTransition(string(next))
	uc.logger.WithFields(log.Fields{
		"order_id": current.ID,
		"from":     current.Status,
		"to":       next,
	}).Info("order status changed")

	uc.notify(ctx, updated.ID, updated.Status)
	return updated, nil
}

// notify передаёт статус сервису приготовления; ошибка только логируется.
func (uc *UseCase) notify(ctx context.Context, orderID int64, status domain.OrderStatus) {
	if uc.notifier == nil {
		return
	}

	err := uc.notifier.NotifyStatus(ctx, domain.StatusNotification{
		OrderID:   orderID,
		Status:    status,
		CreatedAt: uc.clock(),
	})
	if err != nil {
		uc.metrics.RecordNotificationFailure()
		uc.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"status":   status,
		}).Warn("failed to enqueue preparation notification")
	}
}
