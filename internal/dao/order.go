package dao

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// OrderLine: строка order_items вместе с прочитанной позицией меню.
type OrderLine struct {
	Item     Item
	Position int
	Quantity int32
	// UnitValue: цена позиции на момент оформления заказа.
	UnitValue decimal.Decimal
}

// ToEntity отображает строку в снимок позиции с количеством и ценой строки.
func (l OrderLine) ToEntity() domain.Item {
	item := l.Item.ToEntity()
	item.Quantity = l.Quantity
	item.Value = l.UnitValue
	return item
}

// Order: строка таблицы orders со связанными строками заказа.
type Order struct {
	ID        int64
	Status    string
	ClientID  *int64
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []OrderLine
}

// ToEntity отображает запись и её строки в доменный заказ.
func (o Order) ToEntity() domain.Order {
	items := make([]domain.Item, 0, len(o.Lines))
	for _, line := range o.Lines {
		items = append(items, line.ToEntity())
	}

	return domain.Order{
		ID:        o.ID,
		Status:    domain.OrderStatus(o.Status),
		ClientID:  copyID(o.ClientID),
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// OrdersToEntities отображает список записей; для nil возвращает пустой срез.
func OrdersToEntities(records []Order) []domain.Order {
	result := make([]domain.Order, 0, len(records))
	for _, record := range records {
		result = append(result, record.ToEntity())
	}
	return result
}

// OrderFromEntity строит запись заказа; позиция строки соответствует индексу в заказе.
func OrderFromEntity(o domain.Order) Order {
	lines := make([]OrderLine, 0, len(o.Items))
	for idx, item := range o.Items {
		lines = append(lines, OrderLine{
			Item:      ItemFromEntity(item),
			Position:  idx,
			Quantity:  item.Quantity,
			UnitValue: item.Value,
		})
	}

	return Order{
		ID:        o.ID,
		Status:    string(o.Status),
		ClientID:  copyID(o.ClientID),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Lines:     lines,
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
