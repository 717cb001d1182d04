package repository

import (
	"context"
	"errors"

	"armenu/internal/model"

	"gorm.io/gorm"
)

type PaymentRecordRepository struct {
	db *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{db: db}
}

func (r *PaymentRecordRepository) Create(ctx context.Context, tx *gorm.DB, rec *model.PaymentRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(rec).Error
}

// GetByPaymentID 按网关支付ID查流水，查不到返回 nil
func (r *PaymentRecordRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRecord, error) {
	var rec model.PaymentRecord
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PaymentRecordRepository) GetByOrderNo(ctx context.Context, orderNo string) (*model.PaymentRecord, error) {
	var rec model.PaymentRecord
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
