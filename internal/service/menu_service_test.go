package service

import (
	"context"
	"testing"

	"armenu/internal/model"
	"armenu/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestMenuCRUD(t *testing.T) {
	db := setupTestDB(t)
	s := NewMenuService(db)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, "owner_1", &MenuItemInput{
		Name: "Paneer Tikka", Price: 220, Category: "Starters", IsPublic: true,
	})
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	// 改价
	require.NoError(t, s.UpdateItem(ctx, "owner_1", item.ID, &MenuItemInput{
		Name: "Paneer Tikka", Price: 250, Category: "Starters", IsPublic: true,
	}))

	items, err := s.ListItems(ctx, "owner_1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, float64(250), items[0].Price)

	// 别家店主改不到
	err = s.UpdateItem(ctx, "owner_2", item.ID, &MenuItemInput{Name: "X", Price: 1})
	require.ErrorIs(t, err, repository.ErrMenuItemNotFound)

	err = s.DeleteItem(ctx, "owner_2", item.ID)
	require.ErrorIs(t, err, repository.ErrMenuItemNotFound)

	require.NoError(t, s.DeleteItem(ctx, "owner_1", item.ID))

	items, err = s.ListItems(ctx, "owner_1")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCreateItemValidation(t *testing.T) {
	s := NewMenuService(setupTestDB(t))

	_, err := s.CreateItem(context.Background(), "owner_1", &MenuItemInput{Name: "", Price: 10})
	require.Error(t, err)

	_, err = s.CreateItem(context.Background(), "owner_1", &MenuItemInput{Name: "Dosa", Price: -1})
	require.Error(t, err)
}

func TestPublicMenu(t *testing.T) {
	db := setupTestDB(t)
	s := NewMenuService(db)
	ctx := context.Background()

	seed := []*model.MenuItem{
		{OwnerID: "owner_1", Name: "Paneer Tikka", Price: 220, Category: "Starters", IsPublic: true},
		{OwnerID: "owner_1", Name: "Dal Makhani", Price: 180, Category: "Mains", IsPublic: true},
		{OwnerID: "owner_1", Name: "Gulab Jamun", Price: 90, Category: "", IsPublic: true},
		{OwnerID: "owner_1", Name: "Secret Special", Price: 500, Category: "Mains", IsPublic: false},
		{OwnerID: "owner_2", Name: "Biryani", Price: 260, Category: "Mains", IsPublic: true},
	}
	for _, it := range seed {
		require.NoError(t, db.Create(it).Error)
	}

	grouped, err := s.PublicMenu(ctx, "owner_1")
	require.NoError(t, err)

	// 按分类分组，未公开和别家的菜不出现，无分类归到 Others
	require.Len(t, grouped, 3)
	require.Len(t, grouped["Starters"], 1)
	require.Len(t, grouped["Mains"], 1)
	require.Equal(t, "Dal Makhani", grouped["Mains"][0].Name)
	require.Len(t, grouped["Others"], 1)
	require.Equal(t, "Gulab Jamun", grouped["Others"][0].Name)
}
