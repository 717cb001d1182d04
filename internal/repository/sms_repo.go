package repository

import (
	"context"

	"armenu/internal/model"

	"gorm.io/gorm"
)

type SmsRepository struct {
	db *gorm.DB
}

func NewSmsRepository(db *gorm.DB) *SmsRepository {
	return &SmsRepository{db: db}
}

func (r *SmsRepository) Create(ctx context.Context, tx *gorm.DB, msg *model.SmsMessage) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(msg).Error
}

func (r *SmsRepository) GetPendingMessages(ctx context.Context, limit int) ([]*model.SmsMessage, error) {
	var messages []*model.SmsMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SmsStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// MarkAsSent 记录网关返回的消息ID
func (r *SmsRepository) MarkAsSent(ctx context.Context, id int64, sid string) error {
	return r.db.WithContext(ctx).
		Model(&model.SmsMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": model.SmsStatusSent,
			"sid":    sid,
		}).Error
}

func (r *SmsRepository) IncrementRetryCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.SmsMessage{}).
		Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

func (r *SmsRepository) MarkAsFailed(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.SmsMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.SmsStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}

func (r *SmsRepository) GetByOrderNo(ctx context.Context, orderNo string) ([]*model.SmsMessage, error) {
	var messages []*model.SmsMessage
	err := r.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
