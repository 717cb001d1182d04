package repository

import (
	"context"
	"errors"

	"armenu/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBankDetailNotFound = errors.New("收款信息不存在")

type BankRepository struct {
	db *gorm.DB
}

func NewBankRepository(db *gorm.DB) *BankRepository {
	return &BankRepository{db: db}
}

func (r *BankRepository) GetByOwner(ctx context.Context, ownerID string) (*model.BankDetail, error) {
	var detail model.BankDetail
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankDetailNotFound
		}
		return nil, err
	}
	return &detail, nil
}

// Upsert 每个店主只保留一行收款信息
func (r *BankRepository) Upsert(ctx context.Context, detail *model.BankDetail) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"account_holder", "account_number", "ifsc", "upi_id",
			}),
		}).
		Create(detail).Error
}
