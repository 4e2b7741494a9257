// Package memory содержит in-memory реализации репозиториев для локальной разработки и тестов.
package memory

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
)

// orderLineRecord: строка order_items: ссылка на позицию и снимок цены.
type orderLineRecord struct {
	itemID    int64
	position  int
	quantity  int32
	unitValue decimal.Decimal
}

// orderRecord хранит заказ без позиций и его строки.
type orderRecord struct {
	order dao.Order
	lines []orderLineRecord
}

// Store: общее состояние всех in-memory репозиториев под одним RWMutex,
// чтобы проверки уникальности и ссылочной целостности выполнялись атомарно.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	customers      map[int64]dao.Customer
	customerSeq    int64
	items          map[int64]dao.Item
	itemSeq        int64
	orders         map[int64]*orderRecord
	orderSeq       int64
	itemReferences map[int64]int
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		now:            func() time.Time { return time.Now().UTC() },
		customers:      make(map[int64]dao.Customer),
		items:          make(map[int64]dao.Item),
		orders:         make(map[int64]*orderRecord),
		itemReferences: make(map[int64]int),
	}
}

// Customers возвращает репозиторий клиентов поверх хранилища.
func (s *Store) Customers() dao.CustomerRepository {
	return &customerRepositoryInMemory{store: s}
}

// Items возвращает репозиторий позиций меню поверх хранилища.
func (s *Store) Items() dao.ItemRepository {
	return &itemRepositoryInMemory{store: s}
}

// Orders возвращает репозиторий заказов поверх хранилища.
func (s *Store) Orders() dao.OrderRepository {
	return &orderRepositoryInMemory{store: s}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
