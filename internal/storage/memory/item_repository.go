package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

type itemRepositoryInMemory struct {
	store *Store
}

func (r *itemRepositoryInMemory) Save(_ context.Context, item dao.Item) (dao.Item, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(item.Name, 0) {
		return dao.Item{}, domain.ErrItemNameTaken
	}

	s.itemSeq++
	now := s.now()
	item.ID = s.itemSeq
	item.Image = cloneBytes(item.Image)
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = item
	return item, nil
}

func (r *itemRepositoryInMemory) GetByID(_ context.Context, id int64) (dao.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return dao.Item{}, domain.ErrItemNotFound
	}
	item.Image = cloneBytes(item.Image)
	return item, nil
}

func (r *itemRepositoryInMemory) GetByName(_ context.Context, name string) (dao.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.Name == name {
			item.Image = cloneBytes(item.Image)
			return item, nil
		}
	}
	return dao.Item{}, domain.ErrItemNotFound
}

// FindByParams фильтрует по точному совпадению категории и названия.
func (r *itemRepositoryInMemory) FindByParams(_ context.Context, filter domain.ItemFilter) ([]dao.Item, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]dao.Item, 0, len(s.items))
	for _, item := range s.items {
		if filter.Category != nil && item.Category != string(*filter.Category) {
			continue
		}
		if filter.Name != "" && item.Name != filter.Name {
			continue
		}
		item.Image = cloneBytes(item.Image)
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update перезаписывает изменяемые поля; created_at сохраняется.
func (r *itemRepositoryInMemory) Update(_ context.Context, item dao.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if s.nameTakenLocked(item.Name, item.ID) {
		return domain.ErrItemNameTaken
	}

	current.Name = item.Name
	current.Description = item.Description
	current.Category = item.Category
	current.Value = item.Value
	current.Image = cloneBytes(item.Image)
	current.UpdatedAt = s.now()
	s.items[item.ID] = current
	return nil
}

// DeleteByID удаляет позицию, если на неё не ссылается ни одна строка заказа.
func (r *itemRepositoryInMemory) DeleteByID(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	if s.itemReferences[id] > 0 {
		return domain.ErrItemInUse
	}
	delete(s.items, id)
	return nil
}

// nameTakenLocked проверяет уникальность названия; вызывается под s.mu.
func (s *Store) nameTakenLocked(name string, exceptID int64) bool {
	for id, existing := range s.items {
		if id != exceptID && existing.Name == name {
			return true
		}
	}
	return false
}

var _ dao.ItemRepository = (*itemRepositoryInMemory)(nil)
