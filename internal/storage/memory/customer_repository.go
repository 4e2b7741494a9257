package memory

import (
	"context"
	"strings"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

type customerRepositoryInMemory struct {
	store *Store
}

// Create присваивает ID и сохраняет клиента; e-mail уникален без учёта регистра.
func (r *customerRepositoryInMemory) Create(_ context.Context, customer dao.Customer) (dao.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if strings.EqualFold(existing.Email, customer.Email) {
			return dao.Customer{}, domain.ErrCustomerEmailTaken
		}
	}

	s.customerSeq++
	now := s.now()
	customer.ID = s.customerSeq
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.customers[customer.ID] = customer
	return customer, nil
}

func (r *customerRepositoryInMemory) GetByID(_ context.Context, id int64) (dao.Customer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return dao.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepositoryInMemory) GetByEmail(_ context.Context, email string) (dao.Customer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, customer := range s.customers {
		if strings.EqualFold(customer.Email, email) {
			return customer, nil
		}
	}
	return dao.Customer{}, domain.ErrCustomerNotFound
}

// Remove удаляет клиента; заказы клиента остаются, внешнего ключа нет.
func (r *customerRepositoryInMemory) Remove(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(s.customers, id)
	return nil
}

var _ dao.CustomerRepository = (*customerRepositoryInMemory)(nil)
