package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// ItemDTO: позиция меню в ответе API.
type ItemDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Value       json.Number `json:"value"`
	Quantity    int32       `json:"quantity"`
	// Image передаётся в base64.
	Image string `json:"image"`
}

// OrderDTO: заказ в ответе API.
type OrderDTO struct {
	ID        int64       `json:"id"`
	Status    string      `json:"status"`
	ClientID  *int64      `json:"clientId"`
	Total     json.Number `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []ItemDTO   `json:"items"`
}

func money(v decimal.Decimal) json.Number {
	return json.Number(v.StringFixed(2))
}

// ItemToDTO отображает позицию меню в DTO.
func ItemToDTO(item domain.Item) ItemDTO {
	return ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    string(item.Category),
		Value:       money(item.Value),
		Quantity:    item.Quantity,
		Image:       base64.StdEncoding.EncodeToString(item.Image),
	}
}

// ItemsToDTO отображает список позиций; пустой вход даёт пустой, а не nil, срез.
func ItemsToDTO(items []domain.Item) []ItemDTO {
	out := make([]ItemDTO, len(items))
	for i, item := range items {
		out[i] = ItemToDTO(item)
	}
	return out
}

// OrderToDTO отображает заказ вместе с позициями.
func OrderToDTO(order domain.Order) OrderDTO {
	var clientID *int64
	if order.ClientID != nil {
		id := *order.ClientID
		clientID = &id
	}
	return OrderDTO{
		ID:        order.ID,
		Status:    string(order.Status),
		ClientID:  clientID,
		Total:     money(order.Total),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
		Items:     ItemsToDTO(order.Items),
	}
}

// OrdersToDTO отображает список заказов.
func OrdersToDTO(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i, order := range orders {
		out[i] = OrderToDTO(order)
	}
	return out
}
