package client

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"moment-ticketing/internal/model"
)

func InitDB(databaseURL string) *gorm.DB {
	// TranslateError surfaces unique-constraint violations as
	// gorm.ErrDuplicatedKey, which the confirmation path relies on.
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal("connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Fatal("obtain sql db", zap.Error(err))
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Moment{},
		&model.PaymentSession{},
		&model.MomentParticipant{},
		&model.WebhookEvent{},
	); err != nil {
		zap.L().Fatal("migrate database", zap.Error(err))
	}

	return db
}
