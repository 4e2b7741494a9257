// Package item реализует сценарии работы с позициями меню.
package item

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// resolveConcurrency ограничивает число параллельных запросов к хранилищу в GetAllByIDs.
const resolveConcurrency = 8

// UseCase управляет позициями меню.
type UseCase struct {
	repo   dao.ItemRepository
	logger *log.Entry
}

// NewUseCase создаёт сценарии позиций меню поверх репозитория.
func NewUseCase(repo dao.ItemRepository, logger *log.Entry) *UseCase {
	if logger == nil {
		logger = log.WithField("component", "item-usecase")
	}
	return &UseCase{repo: repo, logger: logger}
}

// Create сохраняет новую позицию; занятое название возвращает ErrItemNameTaken.
func (uc *UseCase) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	if err := uc.ensureNameFree(ctx, item.Name); err != nil {
		return domain.Item{}, err
	}

	saved, err := uc.repo.Save(ctx, dao.ItemFromEntity(item))
	if err != nil {
		return domain.Item{}, fmt.Errorf("save item: %w", err)
	}

	uc.logger.WithFields(log.Fields{
		"item_id":  saved.ID,
		"category": saved.Category,
	}).Info("item created")

	return saved.ToEntity(), nil
}

// GetByID возвращает позицию или ErrItemNotFound.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (domain.Item, error) {
	record, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return record.ToEntity(), nil
}

// FindByParams возвращает позиции по фильтру; пустой результат не является ошибкой.
func (uc *UseCase) FindByParams(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	records, err := uc.repo.FindByParams(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	return dao.ItemsToEntities(records), nil
}

// Update применяет патч к существующей позиции и возвращает результат.
func (uc *UseCase) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.Item, error) {
	current, err := uc.GetByID(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	if patch.Name != nil && *patch.Name != current.Name {
		if err := uc.ensureNameFree(ctx, *patch.Name); err != nil {
			return domain.Item{}, err
		}
	}

	updated := patch.Apply(current)
	if err := uc.repo.Update(ctx, dao.ItemFromEntity(updated)); err != nil {
		return domain.Item{}, fmt.Errorf("update item %d: %w", id, err)
	}

	uc.logger.WithField("item_id", id).Info("item updated")
	return updated, nil
}

// Delete удаляет позицию; используемая в заказах позиция возвращает ErrItemInUse.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}

	uc.logger.WithField("item_id", id).Info("item deleted")
	return nil
}

// GetAllByIDs разрешает строки заказа в снимки позиций с количеством строки.
// Порядок результата совпадает с порядком строк; одна ненайденная позиция отменяет весь вызов.
func (uc *UseCase) GetAllByIDs(ctx context.Context, lines []domain.OrderLine) ([]domain.Item, error) {
	result := make([]domain.Item, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for idx, line := range lines {
		g.Go(func() error {
			item, err := uc.GetByID(gctx, line.ItemID)
			if err != nil {
				return err
			}
			item.Quantity = line.Quantity
			result[idx] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *UseCase) ensureNameFree(ctx context.Context, name string) error {
	_, err := uc.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return domain.ErrItemNameTaken
	case errors.Is(err, domain.ErrItemNotFound):
		return nil
	default:
		return fmt.Errorf("check item name: %w", err)
	}
}
