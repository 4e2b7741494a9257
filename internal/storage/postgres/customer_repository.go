package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

var customerSchema = dao.CustomerSchema

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) dao.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Create(ctx context.Context, customer dao.Customer) (dao.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cols := customerSchema.InsertColumns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		customerSchema.Table, strings.Join(cols, ", "), dao.Placeholders(1, len(cols)), customerSchema.SelectList(""))

	created, err := scanCustomer(r.db.QueryRowContext(ctx, query,
		customer.CPF, customer.Name, customer.Email, customer.Address, customer.Phone,
	))
	if err != nil {
		if mapped := uniqueConstraintError(err); mapped != nil {
			return dao.Customer{}, mapped
		}
		return dao.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return created, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (dao.Customer, error) {
	return r.getOne(ctx, customerSchema.PrimaryKey+" = $1", id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (dao.Customer, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *customerRepository) Remove(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, customerSchema.Table, customerSchema.PrimaryKey), id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for customer delete: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) getOne(ctx context.Context, where string, arg any) (dao.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, customerSchema.SelectList(""), customerSchema.Table, where)
	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dao.Customer{}, domain.ErrCustomerNotFound
		}
		return dao.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func scanCustomer(row *sql.Row) (dao.Customer, error) {
	var c dao.Customer
	err := row.Scan(&c.ID, &c.CPF, &c.Name, &c.Email, &c.Address, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ dao.CustomerRepository = (*customerRepository)(nil)
