package service

import (
	"context"
	"errors"

	"armenu/internal/model"
	"armenu/internal/repository"

	"gorm.io/gorm"
)

type MenuService struct {
	menuRepo *repository.MenuRepository
	db       *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{
		menuRepo: repository.NewMenuRepository(db),
		db:       db,
	}
}

type MenuItemInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
	ModelURL    string
	IsPublic    bool
}

func (s *MenuService) CreateItem(ctx context.Context, ownerID string, in *MenuItemInput) (*model.MenuItem, error) {
	if in.Name == "" {
		return nil, errors.New("菜品名称不能为空")
	}
	if in.Price < 0 {
		return nil, errors.New("单价不能为负")
	}

	item := &model.MenuItem{
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		ModelURL:    in.ModelURL,
		IsPublic:    in.IsPublic,
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, ownerID string, id int64, in *MenuItemInput) error {
	if in.Price < 0 {
		return errors.New("单价不能为负")
	}
	return s.menuRepo.Update(ctx, ownerID, id, map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"category":    in.Category,
		"image_url":   in.ImageURL,
		"model_url":   in.ModelURL,
		"is_public":   in.IsPublic,
	})
}

func (s *MenuService) DeleteItem(ctx context.Context, ownerID string, id int64) error {
	return s.menuRepo.Delete(ctx, ownerID, id)
}

func (s *MenuService) ListItems(ctx context.Context, ownerID string) ([]*model.MenuItem, error) {
	return s.menuRepo.ListByOwner(ctx, ownerID)
}

// PublicMenu 扫码菜单页：公开菜品按分类分组
func (s *MenuService) PublicMenu(ctx context.Context, ownerID string) (map[string][]*model.MenuItem, error) {
	items, err := s.menuRepo.ListPublicByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*model.MenuItem)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Others"
		}
		grouped[category] = append(grouped[category], item)
	}
	return grouped, nil
}
