package repository

import (
	"context"
	"errors"

	"armenu/internal/model"

	"gorm.io/gorm"
)

var ErrMenuItemNotFound = errors.New("菜单项不存在")

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Update 按店主维度更新，防止改到别家的菜
func (r *MenuRepository) Update(ctx context.Context, ownerID string, id int64, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.MenuItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.MenuItem, error) {
	var items []*model.MenuItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("category ASC, name ASC").
		Find(&items).Error
	return items, err
}

// ListPublicByOwner 扫码菜单页用，只返回公开菜品
func (r *MenuRepository) ListPublicByOwner(ctx context.Context, ownerID string) ([]*model.MenuItem, error) {
	var items []*model.MenuItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_public = ?", ownerID, true).
		Order("category ASC, name ASC").
		Find(&items).Error
	return items, err
}
