package dao

import (
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// Customer: строка таблицы customers.
type Customer struct {
	ID        int64
	CPF       string
	Name      string
	Email     string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToEntity отображает запись в доменную сущность.
func (c Customer) ToEntity() domain.Customer {
	return domain.Customer{
		ID:      c.ID,
		CPF:     c.CPF,
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		Phone:   c.Phone,
	}
}

// CustomersToEntities отображает список записей; для nil возвращает пустой срез.
func CustomersToEntities(records []Customer) []domain.Customer {
	result := make([]domain.Customer, 0, len(records))
	for _, record := range records {
		result = append(result, record.ToEntity())
	}
	return result
}

// CustomerFromEntity строит запись из сущности; временные метки выставляет хранилище.
func CustomerFromEntity(c domain.Customer) Customer {
	return Customer{
		ID:      c.ID,
		CPF:     c.CPF,
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		Phone:   c.Phone,
	}
}
