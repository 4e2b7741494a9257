package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusCreated: заказ принят, приготовление не начато.
	OrderStatusCreated OrderStatus = "Created"
	// OrderStatusInPreparation: кухня готовит заказ.
	OrderStatusInPreparation OrderStatus = "InPreparation"
	// OrderStatusFinished: заказ готов.
	OrderStatusFinished OrderStatus = "Finished"
)

// OrderStatuses возвращает все статусы в порядке жизненного цикла.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCreated, OrderStatusInPreparation, OrderStatusFinished}
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusInPreparation, OrderStatusFinished:
		return true
	default:
		return false
	}
}

// Updatable сообщает, можно ли выставить статус через обновление заказа.
func (s OrderStatus) Updatable() bool {
	return s == OrderStatusInPreparation || s == OrderStatusFinished
}

// next возвращает единственный допустимый следующий статус.
func (s OrderStatus) next() (OrderStatus, bool) {
	switch s {
	case OrderStatusCreated:
		return OrderStatusInPreparation, true
	case OrderStatusInPreparation:
		return OrderStatusFinished, true
	default:
		return "", false
	}
}

// CanTransitionTo проверяет переход Created → InPreparation → Finished без пропусков.
func (s OrderStatus) CanTransitionTo(target OrderStatus) error {
	if !target.Updatable() {
		return ErrStatusNotAllowed
	}
	if next, ok := s.next(); ok && next == target {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, target)
}

// OrderLine: запрошенная строка заказа: идентификатор позиции и количество.
type OrderLine struct {
	ItemID   int64
	Quantity int32
}

// OrderFilter задаёт фильтры поиска заказов; nil-поля не фильтруют.
type OrderFilter struct {
	ClientID *int64
	Status   *OrderStatus
}

// Order агрегирует состояние заказа и снимки его позиций.
type Order struct {
	ID     int64
	Status OrderStatus
	// ClientID пустой для анонимного заказа.
	ClientID *int64
	Total    decimal.Decimal
	// Items: снимки позиций меню с количеством строки, в порядке запроса.
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxOrderTotal: наибольшая сумма заказа, которую вмещает NUMERIC(12,2).
var MaxOrderTotal = decimal.RequireFromString("9999999999.99")

// ComputeTotal суммирует Value × Quantity по всем позициям.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Value.IsNegative() {
			errs = append(errs, ErrItemValueInvalid)
		}
	}
	if !ComputeTotal(o.Items).Equal(o.Total) {
		errs = append(errs, ErrTotalMismatch)
	}
	if o.Total.GreaterThan(MaxOrderTotal) {
		errs = append(errs, ErrTotalTooLarge)
	}

	return errs
}
