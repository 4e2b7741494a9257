package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintCustomerEmail = "customers_email_key"
	constraintItemName      = "items_name_key"
	constraintOrderItemFK   = "order_items_item_id_fkey"
)

// constraintErrors сопоставляет нарушенное ограничение доменной ошибке.
var constraintErrors = map[string]error{
	constraintCustomerEmail: domain.ErrCustomerEmailTaken,
	constraintItemName:      domain.ErrItemNameTaken,
}

// pgErrorWithCode возвращает ошибку PostgreSQL, если её SQLSTATE равен code.
func pgErrorWithCode(err error, code string) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr, true
	}
	return nil, false
}

// isItemReferenceViolation сообщает о нарушении связи order_items → items.
func isItemReferenceViolation(err error) bool {
	pgErr, ok := pgErrorWithCode(err, codeForeignKeyViolation)
	return ok && pgErr.ConstraintName == constraintOrderItemFK
}

// uniqueConstraintError превращает нарушение известного уникального ограничения
// в доменную ошибку; для прочих ошибок возвращает nil.
func uniqueConstraintError(err error) error {
	pgErr, ok := pgErrorWithCode(err, codeUniqueViolation)
	if !ok {
		return nil
	}
	return constraintErrors[pgErr.ConstraintName]
}
