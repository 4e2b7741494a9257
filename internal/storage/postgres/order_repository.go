package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

var (
	orderSchema = dao.OrderSchema
	// orderItemsRelation разрешается один раз: схема статична.
	orderItemsRelation = mustRelation(orderSchema, dao.RelationOrderItems)
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) dao.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Save записывает заказ и его строки в одной транзакции и возвращает сохранённое состояние.
func (r *orderRepository) Save(ctx context.Context, order dao.Order) (dao.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var saved dao.Order
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		if err := tx.QueryRowContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (status, client_id, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING %s
		`, orderSchema.Table, orderSchema.PrimaryKey),
			order.Status, order.ClientID, order.Total, order.CreatedAt, order.UpdatedAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		insertLine := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES (%s)`,
			orderItemsRelation.JoinTable,
			orderItemsRelation.OwnerColumn, orderItemsRelation.InverseColumn,
			strings.Join(orderItemsRelation.Columns, ", "),
			dao.Placeholders(1, 2+len(orderItemsRelation.Columns)),
		)
		for _, line := range order.Lines {
			if _, err := tx.ExecContext(ctx, insertLine,
				id, line.Item.ID, line.Position, line.Quantity, line.UnitValue,
			); err != nil {
				if isItemReferenceViolation(err) {
					return fmt.Errorf("item %d: %w", line.Item.ID, domain.ErrItemNotFound)
				}
				return fmt.Errorf("insert order line: %w", err)
			}
		}

		loaded, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		saved = loaded
		return nil
	})
	if err != nil {
		return dao.Order{}, err
	}
	return saved, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (dao.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return getOrder(ctx, r.db, id)
}

func (r *orderRepository) FindByParams(ctx context.Context, filter domain.OrderFilter) ([]dao.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, orderSchema.SelectList(""), orderSchema.Table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	orders := make([]dao.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	lines, err := loadLines(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET status = $2, updated_at = $3 WHERE %s = $1
	`, orderSchema.Table, orderSchema.PrimaryKey), id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for order status: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func getOrder(ctx context.Context, q queryer, id int64) (dao.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		orderSchema.SelectList(""), orderSchema.Table, orderSchema.PrimaryKey)

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dao.Order{}, domain.ErrOrderNotFound
		}
		return dao.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := loadLines(ctx, q, []int64{id})
	if err != nil {
		return dao.Order{}, err
	}
	order.Lines = lines[id]
	return order, nil
}

// loadLines читает строки заказов вместе с позициями меню, сгруппированные по заказу.
func loadLines(ctx context.Context, q queryer, orderIDs []int64) (map[int64][]dao.OrderLine, error) {
	rel := orderItemsRelation
	query := fmt.Sprintf(`
		SELECT l.%s, l.%s, %s
		FROM %s l
		JOIN %s i ON i.%s = l.%s
		WHERE l.%s = ANY($1)
		ORDER BY l.%s, l.%s
	`,
		rel.OwnerColumn, strings.Join(rel.Columns, ", l."), itemSchema.SelectList("i"),
		rel.JoinTable,
		itemSchema.Table, itemSchema.PrimaryKey, rel.InverseColumn,
		rel.OwnerColumn,
		rel.OwnerColumn, rel.OrderBy,
	)

	rows, err := q.QueryContext(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]dao.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			line    dao.OrderLine
			item    = &line.Item
		)
		if err := rows.Scan(
			&orderID, &line.Position, &line.Quantity, &line.UnitValue,
			&item.ID, &item.Name, &item.Description, &item.Category, &item.Value, &item.Image,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		result[orderID] = append(result[orderID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return result, nil
}

func scanOrder(row rowScanner) (dao.Order, error) {
	var (
		o        dao.Order
		clientID sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.Status, &clientID, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return dao.Order{}, err
	}
	if clientID.Valid {
		v := clientID.Int64
		o.ClientID = &v
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func mustRelation(schema dao.Schema, name string) dao.Relation {
	rel, err := schema.Relation(name)
	if err != nil {
		panic(err)
	}
	return rel
}

var _ dao.OrderRepository = (*orderRepository)(nil)
