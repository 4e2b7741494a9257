package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// orderRepositoryInMemory: in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	store *Store
}

// Save сохраняет заказ и строки атомарно: неизвестная позиция отменяет всю запись.
func (r *orderRepositoryInMemory) Save(_ context.Context, order dao.Order) (dao.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]orderLineRecord, 0, len(order.Lines))
	for idx, line := range order.Lines {
		if _, ok := s.items[line.Item.ID]; !ok {
			return dao.Order{}, fmt.Errorf("line %d: %w", idx, domain.ErrItemNotFound)
		}
		lines = append(lines, orderLineRecord{
			itemID:    line.Item.ID,
			position:  line.Position,
			quantity:  line.Quantity,
			unitValue: line.UnitValue,
		})
	}

	s.orderSeq++
	order.ID = s.orderSeq
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	order.ClientID = copyClientID(order.ClientID)

	head := order
	head.Lines = nil
	s.orders[order.ID] = &orderRecord{order: head, lines: lines}
	for _, line := range lines {
		s.itemReferences[line.itemID]++
	}

	return s.hydrateLocked(s.orders[order.ID]), nil
}

func (r *orderRepositoryInMemory) GetByID(_ context.Context, id int64) (dao.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.orders[id]
	if !ok {
		return dao.Order{}, domain.ErrOrderNotFound
	}
	return s.hydrateLocked(record), nil
}

// FindByParams возвращает заказы по фильтру в порядке created_at, id.
func (r *orderRepositoryInMemory) FindByParams(_ context.Context, filter domain.OrderFilter) ([]dao.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]dao.Order, 0, len(s.orders))
	for _, record := range s.orders {
		head := record.order
		if filter.ClientID != nil && (head.ClientID == nil || *head.ClientID != *filter.ClientID) {
			continue
		}
		if filter.Status != nil && head.Status != string(*filter.Status) {
			continue
		}
		result = append(result, s.hydrateLocked(record))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *orderRepositoryInMemory) UpdateStatus(_ context.Context, id int64, status string, updatedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	record.order.Status = status
	record.order.UpdatedAt = updatedAt
	return nil
}

// hydrateLocked собирает заказ с актуальными данными позиций и снимком цены строки.
func (s *Store) hydrateLocked(record *orderRecord) dao.Order {
	order := record.order
	order.ClientID = copyClientID(order.ClientID)
	order.Lines = make([]dao.OrderLine, 0, len(record.lines))
	for _, line := range record.lines {
		item := s.items[line.itemID]
		item.Image = cloneBytes(item.Image)
		order.Lines = append(order.Lines, dao.OrderLine{
			Item:      item,
			Position:  line.position,
			Quantity:  line.quantity,
			UnitValue: line.unitValue,
		})
	}
	sort.SliceStable(order.Lines, func(i, j int) bool { return order.Lines[i].Position < order.Lines[j].Position })
	return order
}

func copyClientID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

var _ dao.OrderRepository = (*orderRepositoryInMemory)(nil)
