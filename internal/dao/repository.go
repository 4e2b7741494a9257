package dao

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет клиента и возвращает запись с присвоенным ID.
	// Дубликат e-mail возвращает domain.ErrCustomerEmailTaken.
	Create(ctx context.Context, customer Customer) (Customer, error)
	// GetByID возвращает клиента или domain.ErrCustomerNotFound.
	GetByID(ctx context.Context, id int64) (Customer, error)
	// GetByEmail возвращает клиента или domain.ErrCustomerNotFound.
	GetByEmail(ctx context.Context, email string) (Customer, error)
	// Remove удаляет клиента; отсутствующий ID возвращает domain.ErrCustomerNotFound.
	Remove(ctx context.Context, id int64) error
}

// ItemRepository описывает требования к хранилищу позиций меню.
type ItemRepository interface {
	// Save сохраняет новую позицию; дубликат названия возвращает domain.ErrItemNameTaken.
	Save(ctx context.Context, item Item) (Item, error)
	GetByID(ctx context.Context, id int64) (Item, error)
	GetByName(ctx context.Context, name string) (Item, error)
	// FindByParams возвращает позиции по фильтру, упорядоченные по ID.
	FindByParams(ctx context.Context, filter domain.ItemFilter) ([]Item, error)
	// Update перезаписывает изменяемые поля позиции с указанным ID.
	Update(ctx context.Context, item Item) error
	// DeleteByID удаляет позицию; ссылка из заказа возвращает domain.ErrItemInUse.
	DeleteByID(ctx context.Context, id int64) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Save сохраняет заказ вместе со строками в одной транзакции.
	Save(ctx context.Context, order Order) (Order, error)
	// GetByID возвращает заказ со строками или domain.ErrOrderNotFound.
	GetByID(ctx context.Context, id int64) (Order, error)
	// FindByParams возвращает заказы по фильтру в порядке created_at ASC, id ASC.
	FindByParams(ctx context.Context, filter domain.OrderFilter) ([]Order, error)
	// UpdateStatus меняет статус и updated_at.
	UpdateStatus(ctx context.Context, id int64, status string, updatedAt time.Time) error
}
