package dao

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// Item: строка таблицы items. Количество не хранится: оно есть только у строки заказа.
type Item struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Value       decimal.Decimal
	Image       []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToEntity отображает запись в доменную сущность с нулевым количеством.
func (i Item) ToEntity() domain.Item {
	return domain.Item{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Category:    domain.ItemCategory(i.Category),
		Value:       i.Value,
		Image:       i.Image,
	}
}

// ItemsToEntities отображает список записей; для nil возвращает пустой срез.
func ItemsToEntities(records []Item) []domain.Item {
	result := make([]domain.Item, 0, len(records))
	for _, record := range records {
		result = append(result, record.ToEntity())
	}
	return result
}

// ItemFromEntity строит запись из сущности; Quantity отбрасывается.
func ItemFromEntity(i domain.Item) Item {
	return Item{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Category:    string(i.Category),
		Value:       i.Value,
		Image:       i.Image,
	}
}
