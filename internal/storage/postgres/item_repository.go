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

var itemSchema = dao.ItemSchema

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository создаёт PostgreSQL-реализацию ItemRepository.
func NewItemRepository(store *Store) dao.ItemRepository {
	return &itemRepository{db: store.DB()}
}

func (r *itemRepository) Save(ctx context.Context, item dao.Item) (dao.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cols := itemSchema.InsertColumns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		itemSchema.Table, strings.Join(cols, ", "), dao.Placeholders(1, len(cols)), itemSchema.SelectList(""))

	saved, err := scanItem(r.db.QueryRowContext(ctx, query,
		item.Name, item.Description, item.Category, item.Value, item.Image,
	))
	if err != nil {
		if mapped := uniqueConstraintError(err); mapped != nil {
			return dao.Item{}, mapped
		}
		return dao.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return saved, nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (dao.Item, error) {
	return r.getOne(ctx, itemSchema.PrimaryKey+" = $1", id)
}

func (r *itemRepository) GetByName(ctx context.Context, name string) (dao.Item, error) {
	return r.getOne(ctx, "name = $1", name)
}

func (r *itemRepository) FindByParams(ctx context.Context, filter domain.ItemFilter) ([]dao.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Name != "" {
		args = append(args, filter.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, itemSchema.SelectList(""), itemSchema.Table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + itemSchema.PrimaryKey

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer rows.Close()

	items := make([]dao.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item dao.Item) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, category = $4, value = $5, image = $6, updated_at = NOW()
		WHERE %s = $1
	`, itemSchema.Table, itemSchema.PrimaryKey),
		item.ID, item.Name, item.Description, item.Category, item.Value, item.Image,
	)
	if err != nil {
		if mapped := uniqueConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for item update: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, itemSchema.Table, itemSchema.PrimaryKey), id)
	if err != nil {
		if isItemReferenceViolation(err) {
			return domain.ErrItemInUse
		}
		return fmt.Errorf("delete item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for item delete: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepository) getOne(ctx context.Context, where string, arg any) (dao.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, itemSchema.SelectList(""), itemSchema.Table, where)
	item, err := scanItem(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dao.Item{}, domain.ErrItemNotFound
		}
		return dao.Item{}, fmt.Errorf("select item: %w", err)
	}
	return item, nil
}

// rowScanner: общее подмножество *sql.Row и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (dao.Item, error) {
	var i dao.Item
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Category, &i.Value, &i.Image, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

var _ dao.ItemRepository = (*itemRepository)(nil)
