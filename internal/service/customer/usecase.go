// Package customer реализует регистрацию и удаление клиентов.
package customer

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// UseCase управляет клиентами.
type UseCase struct {
	repo   dao.CustomerRepository
	logger *log.Entry
}

// NewUseCase создаёт сценарии клиентов поверх репозитория.
func NewUseCase(repo dao.CustomerRepository, logger *log.Entry) *UseCase {
	if logger == nil {
		logger = log.WithField("component", "customer-usecase")
	}
	return &UseCase{repo: repo, logger: logger}
}

// Create регистрирует клиента. Занятый e-mail возвращает ErrCustomerEmailTaken без записи.
func (uc *UseCase) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	_, err := uc.repo.GetByEmail(ctx, customer.Email)
	switch {
	case err == nil:
		return domain.Customer{}, domain.ErrCustomerEmailTaken
	case !errors.Is(err, domain.ErrCustomerNotFound):
		return domain.Customer{}, fmt.Errorf("check customer email: %w", err)
	}

	created, err := uc.repo.Create(ctx, dao.CustomerFromEntity(customer))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	uc.logger.WithField("customer_id", created.ID).Info("customer registered")
	return created.ToEntity(), nil
}

// GetByID возвращает клиента или ErrCustomerNotFound.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	record, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer %d: %w", id, err)
	}
	return record.ToEntity(), nil
}

// Remove удаляет клиента; отсутствующий клиент возвращает ErrCustomerNotFound.
func (uc *UseCase) Remove(ctx context.Context, id int64) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove customer %d: %w", id, err)
	}

	uc.logger.WithField("customer_id", id).Info("customer removed")
	return nil
}
