package database

import (
	"fmt"

	"agrimarket/logger"
	"agrimarket/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the MySQL database and migrates the catalog tables.
func Connect(dsn string, log *logger.Log) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.WithComponent("database").Info("✅ Database connected successfully!")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.WithComponent("database").Info("✅ Database migrated successfully!")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.PriceHistoryEntry{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to migrate the database: %w", err)
	}
	return nil
}
