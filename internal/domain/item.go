package domain

import "github.com/shopspring/decimal"

// ItemCategory: закрытый набор категорий меню.
type ItemCategory string

const (
	ItemCategorySnack   ItemCategory = "Snack"
	ItemCategoryDrink   ItemCategory = "Drink"
	ItemCategoryDessert ItemCategory = "Dessert"
	ItemCategoryCombo   ItemCategory = "Combo"
)

// ItemCategories возвращает все допустимые категории в порядке объявления.
func ItemCategories() []ItemCategory {
	return []ItemCategory{ItemCategorySnack, ItemCategoryDrink, ItemCategoryDessert, ItemCategoryCombo}
}

// Valid проверяет, что категория относится к поддерживаемым значениям.
func (c ItemCategory) Valid() bool {
	switch c {
	case ItemCategorySnack, ItemCategoryDrink, ItemCategoryDessert, ItemCategoryCombo:
		return true
	default:
		return false
	}
}

// ValueScale: число знаков после запятой в цене позиции.
const ValueScale = 2

// MaxItemValue: наибольшая цена позиции, которую вмещает NUMERIC(10,2).
var MaxItemValue = decimal.RequireFromString("99999999.99")

// Item: позиция меню.
type Item struct {
	ID          int64
	Name        string
	Description string
	Category    ItemCategory
	// Value: цена за единицу.
	Value decimal.Decimal
	// Quantity имеет смысл только для позиции внутри заказа; у самой позиции меню всегда 0.
	Quantity int32
	// Image хранится как есть, без перекодирования.
	Image []byte
}

// LineTotal возвращает стоимость строки заказа: Value × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Value.Mul(decimal.NewFromInt32(i.Quantity))
}

// ItemFilter задаёт фильтры поиска позиций меню; пустые поля не фильтруют.
type ItemFilter struct {
	Category *ItemCategory
	Name     string
}

// ItemPatch описывает частичное обновление позиции меню; nil означает "не менять".
type ItemPatch struct {
	Name        *string
	Description *string
	Category    *ItemCategory
	Value       *decimal.Decimal
	Image       []byte
}

// Empty сообщает, что патч не содержит ни одного изменения.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Value == nil && p.Image == nil
}

// Apply возвращает копию позиции с применёнными изменениями.
func (p ItemPatch) Apply(item Item) Item {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Value != nil {
		item.Value = *p.Value
	}
	if p.Image != nil {
		item.Image = append([]byte(nil), p.Image...)
	}
	item.Quantity = 0
	return item
}
