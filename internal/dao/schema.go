// Package dao описывает записи хранилища, их схемы и отображение в доменные сущности.
package dao

import (
	"fmt"
	"strings"
)

// Relation описывает связь многие-ко-многим через промежуточную таблицу.
type Relation struct {
	Name string
	// JoinTable: промежуточная таблица связи.
	JoinTable string
	// OwnerColumn ссылается на владельца связи, InverseColumn на связанную запись.
	OwnerColumn   string
	InverseColumn string
	// Columns: дополнительные колонки связи (количество, цена и т.п.).
	Columns []string
	// OrderBy задаёт порядок чтения связанных записей.
	OrderBy string
}

// Schema: явная конфигурация отображения записи на таблицу.
type Schema struct {
	Table      string
	PrimaryKey string
	// Columns перечисляет колонки в порядке сканирования, первичный ключ первым.
	Columns   []string
	Relations []Relation
}

// SelectList возвращает список колонок через запятую, с префиксом таблицы при alias != "".
func (s Schema) SelectList(alias string) string {
	if alias == "" {
		return strings.Join(s.Columns, ", ")
	}
	cols := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

// InsertColumns возвращает колонки без первичного ключа и служебных временных меток.
func (s Schema) InsertColumns() []string {
	cols := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		if col == s.PrimaryKey || col == ColumnCreatedAt || col == ColumnUpdatedAt {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// Relation возвращает связь по имени.
func (s Schema) Relation(name string) (Relation, error) {
	for _, rel := range s.Relations {
		if rel.Name == name {
			return rel, nil
		}
	}
	return Relation{}, fmt.Errorf("relation %q is not defined for table %s", name, s.Table)
}

// Placeholders возвращает "$from, $from+1, ..." для n параметров.
func Placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

const (
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"

	// RelationOrderItems: связь заказа с позициями меню.
	RelationOrderItems = "items"
)

var (
	CustomerSchema = Schema{
		Table:      "customers",
		PrimaryKey: "id",
		Columns:    []string{"id", "cpf", "name", "email", "address", "phone", ColumnCreatedAt, ColumnUpdatedAt},
	}

	ItemSchema = Schema{
		Table:      "items",
		PrimaryKey: "id",
		Columns:    []string{"id", "name", "description", "category", "value", "image", ColumnCreatedAt, ColumnUpdatedAt},
	}

	OrderSchema = Schema{
		Table:      "orders",
		PrimaryKey: "id",
		Columns:    []string{"id", "status", "client_id", "total", ColumnCreatedAt, ColumnUpdatedAt},
		Relations: []Relation{
			{
				Name:          RelationOrderItems,
				JoinTable:     "order_items",
				OwnerColumn:   "order_id",
				InverseColumn: "item_id",
				Columns:       []string{"position", "quantity", "unit_value"},
				OrderBy:       "position",
			},
		},
	}
)
