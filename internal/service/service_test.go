package service

import (
	"testing"

	"armenu/internal/config"
	"armenu/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个用例一个内存库，表结构和生产保持一致
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.MenuItem{},
		&model.Order{},
		&model.PaymentRecord{},
		&model.SmsMessage{},
		&model.OutboxMessage{},
		&model.BankDetail{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Razorpay: config.RazorpayConfig{
			KeyID:     "key_test",
			KeySecret: "secret_test",
		},
		Business: config.BusinessConfig{
			Currency:      "INR",
			PlatformFee:   50,
			CountryCode:   "+91",
			MaxRetryCount: 3,
		},
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				OrderCreated: "armenu.order.created",
			},
		},
	}
}
