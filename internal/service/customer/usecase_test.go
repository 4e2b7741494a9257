package customer_test

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/customer"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/storage/memory"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "test")
}

func ana() domain.Customer {
	return domain.Customer{
		CPF:     "12345678900",
		Name:    "Ana",
		Email:   "ana@example.com",
		Address: "Rua 1",
		Phone:   "555-0100",
	}
}

func TestCreate_GeneratesID(t *testing.T) {
	uc := customer.NewUseCase(memory.NewStore().Customers(), quietLogger())

	created, err := uc.Create(context.Background(), ana())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "ana@example.com", created.Email)
}

func TestCreate_DuplicateEmailConflictWithoutWrite(t *testing.T) {
	repo := &countingRepo{CustomerRepository: memory.NewStore().Customers()}
	uc := customer.NewUseCase(repo, quietLogger())
	ctx := context.Background()

	_, err := uc.Create(ctx, ana())
	require.NoError(t, err)

	dup := ana()
	dup.Name = "Other"
	_, err = uc.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrCustomerEmailTaken)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, 1, repo.creates)
}

func TestCreate_LookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	uc := customer.NewUseCase(&failingRepo{err: boom}, quietLogger())

	_, err := uc.Create(context.Background(), ana())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestRemove(t *testing.T) {
	uc := customer.NewUseCase(memory.NewStore().Customers(), quietLogger())
	ctx := context.Background()

	assert.ErrorIs(t, uc.Remove(ctx, 1), domain.ErrCustomerNotFound)

	created, err := uc.Create(ctx, ana())
	require.NoError(t, err)
	require.NoError(t, uc.Remove(ctx, created.ID))

	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

type countingRepo struct {
	dao.CustomerRepository
	creates int
}

func (r *countingRepo) Create(ctx context.Context, c dao.Customer) (dao.Customer, error) {
	r.creates++
	return r.CustomerRepository.Create(ctx, c)
}

type failingRepo struct {
	dao.CustomerRepository
	err error
}

func (r *failingRepo) GetByEmail(context.Context, string) (dao.Customer, error) {
	return dao.Customer{}, r.err
}
