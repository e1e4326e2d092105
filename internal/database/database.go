package database

import (
	"fmt"

	"github.com/blues/smartfunding/internal/config"
	"github.com/blues/smartfunding/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Models 需要自动迁移的表
func Models() []interface{} {
	return []interface{}{
		&model.EventModel{},
		&model.ContributeRecordModel{},
		&model.ClaimRecordModel{},
		&model.RefundRecordModel{},
		&model.SettlementRecordModel{},
	}
}

func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
