package item_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/service/item"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/storage/memory"
)

func newUseCase() *item.UseCase {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return item.NewUseCase(memory.NewStore().Items(), logger.WithField("component", "test"))
}

func burger() domain.Item {
	return domain.Item{
		Name:        "Burger",
		Description: "Beef patty",
		Category:    domain.ItemCategorySnack,
		Value:       decimal.RequireFromString("19.00"),
		Image:       []byte("img"),
	}
}

func TestCreate_DuplicateNameConflict(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	created, err := uc.Create(ctx, burger())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int32(0), created.Quantity)

	_, err = uc.Create(ctx, burger())
	assert.ErrorIs(t, err, domain.ErrItemNameTaken)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	all, err := uc.FindByParams(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "conflict must not write")
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := newUseCase().GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUpdate_PartialPatch(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	created, err := uc.Create(ctx, burger())
	require.NoError(t, err)

	value := decimal.RequireFromString("21.50")
	updated, err := uc.Update(ctx, created.ID, domain.ItemPatch{Value: &value})
	require.NoError(t, err)
	assert.True(t, updated.Value.Equal(value))
	assert.Equal(t, "Burger", updated.Name)
	assert.Equal(t, []byte("img"), updated.Image)

	stored, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Value.Equal(value))
	assert.Equal(t, "Beef patty", stored.Description)
}

func TestUpdate_RenameConflictAndMissing(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	_, err := uc.Create(ctx, burger())
	require.NoError(t, err)
	soda := burger()
	soda.Name = "Soda"
	sodaCreated, err := uc.Create(ctx, soda)
	require.NoError(t, err)

	name := "Burger"
	_, err = uc.Update(ctx, sodaCreated.ID, domain.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrItemNameTaken)

	same := "Soda"
	_, err = uc.Update(ctx, sodaCreated.ID, domain.ItemPatch{Name: &same})
	assert.NoError(t, err, "keeping the own name is not a conflict")

	_, err = uc.Update(ctx, 999, domain.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	assert.ErrorIs(t, uc.Delete(ctx, 1), domain.ErrItemNotFound)

	created, err := uc.Create(ctx, burger())
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, created.ID))

	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestFindByParams_Category(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	_, err := uc.Create(ctx, burger())
	require.NoError(t, err)
	soda := burger()
	soda.Name = "Soda"
	soda.Category = domain.ItemCategoryDrink
	_, err = uc.Create(ctx, soda)
	require.NoError(t, err)

	drink := domain.ItemCategoryDrink
	drinks, err := uc.FindByParams(ctx, domain.ItemFilter{Category: &drink})
	require.NoError(t, err)
	require.Len(t, drinks, 1)
	assert.Equal(t, "Soda", drinks[0].Name)

	dessert := domain.ItemCategoryDessert
	none, err := uc.FindByParams(ctx, domain.ItemFilter{Category: &dessert})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetAllByIDs_PreservesOrderAndQuantity(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	first, err := uc.Create(ctx, burger())
	require.NoError(t, err)
	soda := burger()
	soda.Name = "Soda"
	second, err := uc.Create(ctx, soda)
	require.NoError(t, err)

	items, err := uc.GetAllByIDs(ctx, []domain.OrderLine{
		{ItemID: second.ID, Quantity: 3},
		{ItemID: first.ID, Quantity: 1},
		{ItemID: second.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, int32(3), items[0].Quantity)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, int32(2), items[2].Quantity)
}

func TestGetAllByIDs_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	created, err := uc.Create(ctx, burger())
	require.NoError(t, err)

	items, err := uc.GetAllByIDs(ctx, []domain.OrderLine{
		{ItemID: created.ID, Quantity: 1},
		{ItemID: 404, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Nil(t, items)
}
