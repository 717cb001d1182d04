package service

import (
	"context"
	"errors"

	"armenu/internal/model"
	"armenu/internal/repository"

	"gorm.io/gorm"
)

type SettingsService struct {
	bankRepo *repository.BankRepository
	db       *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		bankRepo: repository.NewBankRepository(db),
		db:       db,
	}
}

func (s *SettingsService) GetBankDetail(ctx context.Context, ownerID string) (*model.BankDetail, error) {
	return s.bankRepo.GetByOwner(ctx, ownerID)
}

func (s *SettingsService) SaveBankDetail(ctx context.Context, detail *model.BankDetail) error {
	if detail.OwnerID == "" {
		return errors.New("owner_id 不能为空")
	}
	if detail.AccountHolder == "" || detail.AccountNumber == "" || detail.IFSC == "" {
		return errors.New("户名、账号、IFSC 不能为空")
	}
	return s.bankRepo.Upsert(ctx, detail)
}
